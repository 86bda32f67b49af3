package terminal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stemsi/questionnaire/internal/catalog"
	"github.com/stemsi/questionnaire/internal/model"
)

func newTestPrompter(t *testing.T, input string) (*Prompter, *bytes.Buffer, *catalog.Catalog) {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	return NewPrompter(c, strings.NewReader(input), &out), &out, c
}

func valuesOf(fields []model.FormField, name string) []string {
	var values []string
	for _, f := range fields {
		if f.Name == name {
			values = append(values, f.Value)
		}
	}
	return values
}

func TestAskAllQuestions(t *testing.T) {
	answers := []string{
		"1", "2", "3",
		"1, 3 3", // duplicates collapse
		"1", "2", "3",
		"15", "Artisanat",
		"1", "1", "1", "1", "1", "1",
	}
	p, _, c := newTestPrompter(t, strings.Join(answers, "\n")+"\n")

	fields, err := p.Ask()
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	q4, _ := c.Question("question4")
	if got := valuesOf(fields, "question4[]"); len(got) != 2 || got[0] != q4.Options[0] || got[1] != q4.Options[2] {
		t.Errorf("question4[] = %v", got)
	}
	if got := valuesOf(fields, "question8"); len(got) != 1 || got[0] != c.OtherOption {
		t.Errorf("question8 = %v", got)
	}
	if got := valuesOf(fields, model.OtherSectorField); len(got) != 1 || got[0] != "Artisanat" {
		t.Errorf("other-sector = %v", got)
	}
	q2, _ := c.Question("question2")
	if got := valuesOf(fields, "question2"); len(got) != 1 || got[0] != q2.Options[1] {
		t.Errorf("question2 = %v", got)
	}
}

func TestAskRepromptsInvalidInput(t *testing.T) {
	answers := []string{
		"", "9", "1 2", "abc", "1", // question1: four rejected lines then a valid one
		"1", "1", "", // question4 left empty for validation
		"1", "1", "1", "1",
		"1", "1", "1", "1", "1", "1",
	}
	p, out, _ := newTestPrompter(t, strings.Join(answers, "\n")+"\n")

	fields, err := p.Ask()
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got := valuesOf(fields, "question4[]"); len(got) != 0 {
		t.Errorf("question4[] = %v", got)
	}
	if got := valuesOf(fields, model.OtherSectorField); len(got) != 0 {
		t.Errorf("other-sector asked without the sentinel: %v", got)
	}
	if n := strings.Count(out.String(), "Entrez un seul numéro"); n != 2 {
		t.Errorf("expected 2 single-choice reprompts, got %d", n)
	}
	if !strings.Contains(out.String(), `"abc" n'est pas un numéro`) {
		t.Error("missing reprompt for non-numeric input")
	}
}

func TestAskEndOfInput(t *testing.T) {
	p, _, _ := newTestPrompter(t, "1\n2\n")
	if _, err := p.Ask(); !errors.Is(err, ErrAborted) {
		t.Errorf("err = %v, want ErrAborted", err)
	}
}

func TestReviseReplacesOneQuestion(t *testing.T) {
	p, _, c := newTestPrompter(t, "2,4\n")
	q4, _ := c.Question("question4")
	fields := []model.FormField{
		{Name: "question1", Value: "x"},
		{Name: "question4[]", Value: q4.Options[0]},
	}

	got, err := p.Revise(fields, "question4")
	if err != nil {
		t.Fatalf("Revise: %v", err)
	}
	if v := valuesOf(got, "question4[]"); len(v) != 2 || v[0] != q4.Options[1] || v[1] != q4.Options[3] {
		t.Errorf("question4[] = %v", v)
	}
	if v := valuesOf(got, "question1"); len(v) != 1 {
		t.Errorf("question1 lost: %v", got)
	}
}

func TestReviseOtherSector(t *testing.T) {
	p, _, c := newTestPrompter(t, "15\nPêche artisanale\n")
	fields := []model.FormField{{Name: "question8", Value: c.OtherOption}}

	got, err := p.Revise(fields, model.OtherSectorField)
	if err != nil {
		t.Fatal(err)
	}
	if v := valuesOf(got, model.OtherSectorField); len(v) != 1 || v[0] != "Pêche artisanale" {
		t.Errorf("other-sector = %v", v)
	}
	if v := valuesOf(got, "question8"); len(v) != 1 {
		t.Errorf("question8 = %v", v)
	}
}

func TestIntro(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"\n", true},
		{"oui\n", true},
		{"peut-être\nn\n", false},
	}
	for _, tt := range tests {
		p, _, _ := newTestPrompter(t, tt.input)
		got, err := p.Intro("Titre")
		if err != nil {
			t.Fatalf("Intro(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Intro(%q) = %v", tt.input, got)
		}
	}
}

func TestWrap(t *testing.T) {
	var out bytes.Buffer
	p := &Prompter{out: &out, Width: 10}
	p.wrap("un deux trois quatre")
	if got := out.String(); got != "un deux\ntrois\nquatre\n" {
		t.Errorf("wrap = %q", got)
	}
}
