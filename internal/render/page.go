package render

import (
	"embed"
	"html/template"
	"io"

	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PageTemplate is the name of the root template.
const PageTemplate = "page"

// Panels of the survey page. Exactly one is shown.
const (
	PanelIntro     = "intro"
	PanelQuiz      = "quiz"
	PanelResults   = "results"
	PanelSubmitted = "submitted"
)

// DefaultTitle heads every page.
const DefaultTitle = "Questionnaire : smartphone et intelligence artificielle"

// Page is the data behind one rendering of the survey page.
type Page struct {
	Title      string
	Panel      string
	Form       FormView
	Completion model.Completion
	// Notice is shown as a blocking error banner above the panel.
	Notice      string
	HintsCookie string
}

// NewPage returns a page showing panel with the default title.
func NewPage(panel string) Page {
	return Page{
		Title:       DefaultTitle,
		Panel:       panel,
		HintsCookie: config.StateKey.HintsCookie(),
	}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New(PageTemplate).ParseFS(templateFS, "templates/*.tmpl")
}

// Execute renders p with t.
func Execute(t *template.Template, w io.Writer, p Page) error {
	return t.ExecuteTemplate(w, PageTemplate, p)
}
