package model

import (
	"encoding/json"
	"strings"
)

// AnswerRecord is one respondent's answers, ready to be sent to /submit.
type AnswerRecord struct {
	// Scalars holds single-choice answers and any other plain field, keyed by name.
	Scalars map[string]string
	// Multi holds multi-select answers keyed by base name, in selection order.
	Multi map[string][]string
	// OtherSector is the free-text sector, nil when none was given.
	OtherSector *string
	Fingerprint string

	// wire lists the question names serialised even when unanswered.
	wire []string
}

// NewAnswerRecord returns a record with an empty slot for every catalog question.
func NewAnswerRecord(questions []Question) *AnswerRecord {
	r := &AnswerRecord{
		Scalars: make(map[string]string, len(questions)),
		Multi:   make(map[string][]string),
	}
	for _, q := range questions {
		r.wire = append(r.wire, q.Name)
		if q.Multiple {
			r.Multi[q.Name] = []string{}
		} else {
			r.Scalars[q.Name] = ""
		}
	}
	return r
}

// Add stores one submitted field. Fields named "x[]" accumulate into the
// multi slot "x"; every other field overwrites its scalar slot.
func (r *AnswerRecord) Add(name, value string) {
	if base, ok := strings.CutSuffix(name, MultiSuffix); ok {
		r.Multi[base] = append(r.Multi[base], value)
		return
	}
	r.Scalars[name] = value
}

// MarshalJSON renders the /submit wire shape: question1..N, reserved
// question15/question16, other_sector and browser_fingerprint.
func (r *AnswerRecord) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"question15":          nil,
		"question16":          nil,
		"other_sector":        r.OtherSector,
		"browser_fingerprint": r.Fingerprint,
	}
	for _, name := range r.wire {
		if values, ok := r.Multi[name]; ok {
			if values == nil {
				values = []string{}
			}
			body[name] = values
			continue
		}
		body[name] = r.Scalars[name]
	}
	return json.Marshal(body)
}
