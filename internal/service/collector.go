package service

import (
	"fmt"
	"strings"

	"github.com/stemsi/questionnaire/internal/catalog"
	"github.com/stemsi/questionnaire/internal/model"
)

// ValidationRule identifies which completeness rule an answer record broke.
type ValidationRule string

const (
	RuleRequired    ValidationRule = "required"
	RuleAtLeastOne  ValidationRule = "at_least_one"
	RuleOtherSector ValidationRule = "other_sector"
)

// ValidationError is a user-fixable problem with the answers. It never
// reaches the network.
type ValidationError struct {
	Field   string
	Ordinal int
	Rule    ValidationRule
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AnswerCollector turns submitted form fields into a validated AnswerRecord.
type AnswerCollector struct {
	catalog *catalog.Catalog
}

// NewAnswerCollector creates an AnswerCollector for c.
func NewAnswerCollector(c *catalog.Catalog) *AnswerCollector {
	return &AnswerCollector{catalog: c}
}

// Build collects, validates and finalizes fields, then attaches fp.
func (a *AnswerCollector) Build(fields []model.FormField, fp string) (*model.AnswerRecord, error) {
	record := a.Collect(fields)
	if err := a.Validate(record); err != nil {
		return nil, err
	}
	a.Finalize(record)
	record.Fingerprint = fp
	return record, nil
}

// Collect folds fields, in order, into a record pre-seeded with every
// catalog question.
func (a *AnswerCollector) Collect(fields []model.FormField) *model.AnswerRecord {
	record := model.NewAnswerRecord(a.catalog.Questions)
	for _, f := range fields {
		record.Add(f.Name, f.Value)
	}
	return record
}

// Validate applies the completeness rules in order and stops at the first
// failure: mandatory single-choice answers, multi-select cardinality, then
// the free-text sector.
func (a *AnswerCollector) Validate(record *model.AnswerRecord) error {
	for _, name := range a.catalog.MandatoryNames() {
		if isBlank(record.Scalars[name]) {
			ord := a.catalog.Ordinal(name)
			return &ValidationError{
				Field:   name,
				Ordinal: ord,
				Rule:    RuleRequired,
				Message: fmt.Sprintf("Veuillez répondre à la question %d (obligatoire).", ord),
			}
		}
	}

	for _, name := range a.catalog.MultiNames() {
		if len(record.Multi[name]) == 0 {
			ord := a.catalog.Ordinal(name)
			return &ValidationError{
				Field:   name,
				Ordinal: ord,
				Rule:    RuleAtLeastOne,
				Message: fmt.Sprintf("Veuillez sélectionner au moins une option pour la question %d (obligatoire).", ord),
			}
		}
	}

	sector := a.catalog.SectorQuestion
	if record.Scalars[sector] == a.catalog.OtherOption && isBlank(record.Scalars[model.OtherSectorField]) {
		ord := a.catalog.Ordinal(sector)
		return &ValidationError{
			Field:   model.OtherSectorField,
			Ordinal: ord,
			Rule:    RuleOtherSector,
			Message: fmt.Sprintf("Veuillez préciser votre secteur pour la question %d (obligatoire lorsque %q est sélectionné).", ord, a.catalog.OtherOption),
		}
	}
	return nil
}

// Finalize substitutes the free-text sector for the sentinel option and
// fills OtherSector (nil when no free text was given).
func (a *AnswerCollector) Finalize(record *model.AnswerRecord) {
	other := record.Scalars[model.OtherSectorField]
	sector := a.catalog.SectorQuestion

	if record.Scalars[sector] == a.catalog.OtherOption && other != "" {
		record.Scalars[sector] = other
	}
	if other != "" {
		record.OtherSector = &other
	} else {
		record.OtherSector = nil
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
