// Package catalog holds the fixed questionnaire definition.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/stemsi/questionnaire/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultDocument []byte

// Catalog is the ordered, read-only list of survey questions.
type Catalog struct {
	Questions []model.Question `yaml:"questions"`
	// SectorQuestion names the question carrying the free-text sector field.
	SectorQuestion string `yaml:"sector_question"`
	// OtherOption is the sentinel option revealing the free-text field.
	OtherOption string `yaml:"other_option"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultDocument)
}

// Load reads a catalog from path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog invariants.
func (c *Catalog) Validate() error {
	if len(c.Questions) == 0 {
		return errors.New("catalog has no questions")
	}
	seen := make(map[string]bool, len(c.Questions))
	for i, q := range c.Questions {
		if q.Name == "" {
			return fmt.Errorf("question %d has no name", i+1)
		}
		if seen[q.Name] {
			return fmt.Errorf("duplicate question name %q", q.Name)
		}
		seen[q.Name] = true
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q has no options", q.Name)
		}
		if q.Correct != "" && !q.HasOption(q.Correct) {
			return fmt.Errorf("question %q: correct answer is not one of its options", q.Name)
		}
	}

	sector, ok := c.Question(c.SectorQuestion)
	if !ok {
		return fmt.Errorf("sector question %q not in catalog", c.SectorQuestion)
	}
	if sector.Multiple {
		return fmt.Errorf("sector question %q must be single-choice", c.SectorQuestion)
	}
	if !sector.HasOption(c.OtherOption) {
		return fmt.Errorf("sector question %q does not offer %q", c.SectorQuestion, c.OtherOption)
	}
	return nil
}

// Question looks a question up by name.
func (c *Catalog) Question(name string) (model.Question, bool) {
	for _, q := range c.Questions {
		if q.Name == name {
			return q, true
		}
	}
	return model.Question{}, false
}

// Ordinal is the 1-based position of name in the catalog, or 0 if absent.
func (c *Catalog) Ordinal(name string) int {
	for i, q := range c.Questions {
		if q.Name == name {
			return i + 1
		}
	}
	return 0
}

// MandatoryNames lists the single-choice questions in catalog order.
func (c *Catalog) MandatoryNames() []string {
	var names []string
	for _, q := range c.Questions {
		if !q.Multiple {
			names = append(names, q.Name)
		}
	}
	return names
}

// MultiNames lists the multi-select questions in catalog order.
func (c *Catalog) MultiNames() []string {
	var names []string
	for _, q := range c.Questions {
		if q.Multiple {
			names = append(names, q.Name)
		}
	}
	return names
}
