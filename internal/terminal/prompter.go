// Package terminal renders the survey as numbered prompts on a text terminal.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stemsi/questionnaire/internal/catalog"
	"github.com/stemsi/questionnaire/internal/model"
	"github.com/stemsi/questionnaire/internal/render"
	"golang.org/x/term"
)

const defaultWidth = 80

// ErrAborted is returned when input ends before the questionnaire is complete.
var ErrAborted = errors.New("input closed before the questionnaire was completed")

// Prompter asks the catalog questions one by one.
type Prompter struct {
	catalog *catalog.Catalog
	in      *bufio.Reader
	out     io.Writer
	// Width wraps question texts; zero means 80 columns.
	Width int
}

// NewPrompter creates a Prompter reading answers from in.
func NewPrompter(c *catalog.Catalog, in io.Reader, out io.Writer) *Prompter {
	return &Prompter{catalog: c, in: bufio.NewReader(in), out: out}
}

// Intro prints the welcome text and waits for confirmation. It reports
// false when the respondent declines.
func (p *Prompter) Intro(title string) (bool, error) {
	fmt.Fprintln(p.out, title)
	fmt.Fprintln(p.out, strings.Repeat("=", min(len([]rune(title)), p.width())))
	p.wrap("Ce questionnaire anonyme porte sur votre usage du smartphone et votre perception de l'intelligence artificielle. Il ne prend que quelques minutes.")
	fmt.Fprintln(p.out)
	return p.Confirm("Commencer ?")
}

// Confirm asks a yes/no question; an empty answer means yes.
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprint(p.out, question+" [O/n] ")
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "", "o", "oui", "y", "yes":
			return true, nil
		case "n", "non", "no":
			return false, nil
		}
	}
}

// Ask walks through every question and returns the answers as form fields
// in catalog order.
func (p *Prompter) Ask() ([]model.FormField, error) {
	view := render.BuildForm(p.catalog, render.FormState{})
	var fields []model.FormField
	for _, g := range view.Groups {
		answer, err := p.askGroup(g)
		if err != nil {
			return nil, err
		}
		fields = append(fields, answer...)
	}
	return fields, nil
}

// Revise asks again the question owning field and returns fields with that
// question's answers replaced.
func (p *Prompter) Revise(fields []model.FormField, field string) ([]model.FormField, error) {
	name := field
	if field == model.OtherSectorField {
		name = p.catalog.SectorQuestion
	}
	q, ok := p.catalog.Question(name)
	if !ok {
		return fields, fmt.Errorf("unknown question %q", field)
	}

	view := render.BuildForm(p.catalog, render.StateFromFields(fields))
	answer, err := p.askGroup(view.Groups[p.catalog.Ordinal(name)-1])
	if err != nil {
		return nil, err
	}

	kept := make([]model.FormField, 0, len(fields)+len(answer))
	for _, f := range fields {
		if f.Name == q.FieldName() || (q.Name == p.catalog.SectorQuestion && f.Name == model.OtherSectorField) {
			continue
		}
		kept = append(kept, f)
	}
	return append(kept, answer...), nil
}

// Notice prints a blocking message.
func (p *Prompter) Notice(msg string) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "/!\\ "+msg)
	fmt.Fprintln(p.out)
}

// AlreadySubmitted prints the notice replacing the questionnaire.
func (p *Prompter) AlreadySubmitted() {
	fmt.Fprintln(p.out, "Questionnaire déjà soumis")
	p.wrap("Vous avez déjà participé à ce questionnaire. Merci pour votre contribution !")
}

// Completion prints the end message.
func (p *Prompter) Completion(c model.Completion) {
	fmt.Fprintln(p.out)
	p.wrap(c.Message)
	fmt.Fprintln(p.out)
	p.wrap(c.Details)
	fmt.Fprintln(p.out)
	p.wrap(c.Thanks)
}

func (p *Prompter) askGroup(g render.Group) ([]model.FormField, error) {
	fmt.Fprintln(p.out)
	p.wrap(fmt.Sprintf("%d. %s", g.Ordinal, g.Text))
	for i, ctl := range g.Controls {
		mark := " "
		if ctl.Checked {
			mark = "*"
		}
		fmt.Fprintf(p.out, "  %s%2d) %s\n", mark, i+1, ctl.Value)
	}

	for {
		if g.Multiple {
			fmt.Fprint(p.out, "Vos choix (numéros séparés par des virgules) : ")
		} else {
			fmt.Fprint(p.out, "Votre choix : ")
		}
		line, err := p.readLine()
		if err != nil {
			return nil, err
		}

		picks, problem := parsePicks(line, len(g.Controls), g.Multiple)
		if problem != "" {
			fmt.Fprintln(p.out, problem)
			continue
		}

		fields := make([]model.FormField, 0, len(picks)+1)
		for _, i := range picks {
			ctl := g.Controls[i]
			fields = append(fields, model.FormField{Name: ctl.Name, Value: ctl.Value})
		}
		if g.Other != nil && len(picks) == 1 && g.Controls[picks[0]].Value == g.Other.Trigger {
			fmt.Fprint(p.out, "Précisez votre secteur : ")
			text, err := p.readLine()
			if err != nil {
				return nil, err
			}
			fields = append(fields, model.FormField{Name: g.Other.Name, Value: text})
		}
		return fields, nil
	}
}

// parsePicks reads 1-based option numbers into 0-based indexes, or
// describes what is wrong with line. Single-choice questions take exactly
// one; an empty multi-choice answer is left to validation.
func parsePicks(line string, n int, multiple bool) ([]int, string) {
	parts := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	if !multiple && len(parts) != 1 {
		return nil, fmt.Sprintf("Entrez un seul numéro entre 1 et %d.", n)
	}

	seen := make(map[int]bool, len(parts))
	picks := make([]int, 0, len(parts))
	for _, part := range parts {
		k, err := strconv.Atoi(part)
		if err != nil || k < 1 || k > n {
			return nil, fmt.Sprintf("%q n'est pas un numéro entre 1 et %d.", part, n)
		}
		if !seen[k] {
			seen[k] = true
			picks = append(picks, k-1)
		}
	}
	return picks, ""
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// FitTerminal sets Width from the terminal attached to fd, if any.
func (p *Prompter) FitTerminal(fd int) {
	if !term.IsTerminal(fd) {
		return
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 20 {
		p.Width = w - 1
	}
}

func (p *Prompter) width() int {
	if p.Width > 0 {
		return p.Width
	}
	return defaultWidth
}

// wrap prints text folded at word boundaries to the terminal width.
func (p *Prompter) wrap(text string) {
	width := p.width()
	col := 0
	for i, word := range strings.Fields(text) {
		n := len([]rune(word))
		if i > 0 && col+1+n > width {
			fmt.Fprintln(p.out)
			col = 0
		} else if i > 0 {
			fmt.Fprint(p.out, " ")
			col++
		}
		fmt.Fprint(p.out, word)
		col += n
	}
	fmt.Fprintln(p.out)
}
