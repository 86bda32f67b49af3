// Package render turns the question catalog into view models for the survey
// page and holds its HTML templates.
package render

import (
	"strconv"
	"strings"

	"github.com/stemsi/questionnaire/internal/catalog"
	"github.com/stemsi/questionnaire/internal/model"
)

// FormState carries answers already given, used to re-check controls when
// the form is shown again after a failed attempt.
type FormState struct {
	// Selected holds chosen options keyed by question name.
	Selected    map[string][]string
	OtherSector string
}

// StateFromFields rebuilds a FormState from submitted fields.
func StateFromFields(fields []model.FormField) FormState {
	state := FormState{Selected: make(map[string][]string)}
	for _, f := range fields {
		switch {
		case f.Name == model.OtherSectorField:
			state.OtherSector = f.Value
		case strings.HasSuffix(f.Name, model.MultiSuffix):
			base := strings.TrimSuffix(f.Name, model.MultiSuffix)
			state.Selected[base] = append(state.Selected[base], f.Value)
		default:
			state.Selected[f.Name] = []string{f.Value}
		}
	}
	return state
}

func (s FormState) has(name, value string) bool {
	for _, v := range s.Selected[name] {
		if v == value {
			return true
		}
	}
	return false
}

// Control is one radio or checkbox input.
type Control struct {
	ID       string
	Type     string
	Name     string
	Value    string
	Required bool
	Checked  bool
}

// OtherField is the free-text sector input attached to the sector question.
type OtherField struct {
	ID      string
	Name    string
	Value   string
	Visible bool
	// Trigger is the option value that reveals the field.
	Trigger string
}

// Group is the rendering of one question.
type Group struct {
	Ordinal  int
	Name     string
	Text     string
	Multiple bool
	Controls []Control
	Other    *OtherField
}

// FormView is the whole quiz form.
type FormView struct {
	Groups []Group
}

// BuildForm lays out every catalog question in order. Single-choice groups
// use required radio buttons; multi-select groups use checkboxes named
// "<name>[]" that are never individually required.
func BuildForm(c *catalog.Catalog, state FormState) FormView {
	view := FormView{Groups: make([]Group, 0, len(c.Questions))}
	for i, q := range c.Questions {
		g := Group{
			Ordinal:  i + 1,
			Name:     q.Name,
			Text:     q.Text,
			Multiple: q.Multiple,
			Controls: make([]Control, 0, len(q.Options)),
		}
		ctype := "radio"
		if q.Multiple {
			ctype = "checkbox"
		}
		for j, opt := range q.Options {
			g.Controls = append(g.Controls, Control{
				ID:       q.Name + "-" + strconv.Itoa(j),
				Type:     ctype,
				Name:     q.FieldName(),
				Value:    opt,
				Required: !q.Multiple,
				Checked:  state.has(q.Name, opt),
			})
		}

		if q.Name == c.SectorQuestion {
			other := &OtherField{
				ID:      model.OtherSectorField,
				Name:    model.OtherSectorField,
				Trigger: c.OtherOption,
				Visible: state.has(q.Name, c.OtherOption),
			}
			// Hidden means cleared.
			if other.Visible {
				other.Value = state.OtherSector
			}
			g.Other = other
		}
		view.Groups = append(view.Groups, g)
	}
	return view
}
