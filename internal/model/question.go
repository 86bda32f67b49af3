package model

// Question is one multiple-choice entry of the questionnaire catalog.
type Question struct {
	Text     string   `yaml:"text" json:"text"`
	Options  []string `yaml:"options" json:"options"`
	Name     string   `yaml:"name" json:"name"`
	Multiple bool     `yaml:"multiple,omitempty" json:"multiple,omitempty"`
	// Correct is informational only; answers are never scored client-side.
	Correct string `yaml:"correct,omitempty" json:"correct,omitempty"`
}

// HasOption reports whether value is one of the question's options.
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}

// FieldName is the form control name: multi-select groups carry a "[]" suffix.
func (q Question) FieldName() string {
	if q.Multiple {
		return q.Name + MultiSuffix
	}
	return q.Name
}

// MultiSuffix marks a form field as belonging to a multi-select group.
const MultiSuffix = "[]"

// OtherSectorField is the form field carrying the free-text sector.
const OtherSectorField = "other-sector"

// FormField is one submitted name/value pair, in submission order.
type FormField struct {
	Name  string `json:"name" binding:"required,max=64"`
	Value string `json:"value" binding:"max=1000"`
}
