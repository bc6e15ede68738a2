// Package catalog holds the questionnaire definition: ordered sections of
// ordered questions. The catalog is read-only input to everything else; the
// response model and the formatter both key off it.
package catalog

import (
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// QuestionType enumerates the supported answer shapes.
type QuestionType string

const (
	TypeText           QuestionType = "text"
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeMultipleSelect QuestionType = "multiple-select"
	TypeYesNoFollowup  QuestionType = "yes-no-followup"
	TypePriorityRank   QuestionType = "priority-ranking"
)

type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

type Question struct {
	ID       string       `yaml:"id" json:"id"`
	Label    string       `yaml:"label" json:"label"`
	Type     QuestionType `yaml:"type" json:"type"`
	Required bool         `yaml:"required" json:"required"`
	Options  []Option     `yaml:"options,omitempty" json:"options,omitempty"`
}

type Section struct {
	ID        string     `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Questions []Question `yaml:"questions" json:"questions"`
}

type Catalog struct {
	Sections []Section `yaml:"sections" json:"sections"`
}

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Default returns the built-in ERP discovery catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		// The embedded catalog is validated by tests; a failure here is a
		// build defect, not a runtime condition.
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Load reads a YAML catalog and validates it.
func Load(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Sections) == 0 {
		return fmt.Errorf("catalog has no sections")
	}
	seenSection := map[string]bool{}
	seenQuestion := map[string]bool{}
	for _, s := range c.Sections {
		if s.ID == "" {
			return fmt.Errorf("section %q has empty id", s.Name)
		}
		if seenSection[s.ID] {
			return fmt.Errorf("duplicate section id %q", s.ID)
		}
		seenSection[s.ID] = true
		for _, q := range s.Questions {
			if q.ID == "" {
				return fmt.Errorf("section %q: question with empty id", s.ID)
			}
			// Question ids are unique across the whole catalog, not just
			// within a section.
			if seenQuestion[q.ID] {
				return fmt.Errorf("duplicate question id %q", q.ID)
			}
			seenQuestion[q.ID] = true
			switch q.Type {
			case TypeText, TypeYesNoFollowup:
			case TypeMultipleChoice, TypeMultipleSelect, TypePriorityRank:
				if len(q.Options) == 0 {
					return fmt.Errorf("question %q (%s) has no options", q.ID, q.Type)
				}
			default:
				return fmt.Errorf("question %q has unknown type %q", q.ID, q.Type)
			}
		}
	}
	return nil
}

// Section returns the section with the given id, or nil.
func (c *Catalog) Section(id string) *Section {
	for i := range c.Sections {
		if c.Sections[i].ID == id {
			return &c.Sections[i]
		}
	}
	return nil
}

// Question returns the question with the given id from any section, or nil.
func (c *Catalog) Question(id string) *Question {
	for i := range c.Sections {
		for j := range c.Sections[i].Questions {
			if c.Sections[i].Questions[j].ID == id {
				return &c.Sections[i].Questions[j]
			}
		}
	}
	return nil
}

// OptionLabel resolves an option value to its display label. Unknown values
// fall back to the raw value so stray data still renders.
func (c *Catalog) OptionLabel(questionID, value string) string {
	q := c.Question(questionID)
	if q == nil {
		return value
	}
	for _, o := range q.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// SectionOrder returns the catalog's section ids in order.
func (c *Catalog) SectionOrder() []string {
	out := make([]string, len(c.Sections))
	for i, s := range c.Sections {
		out[i] = s.ID
	}
	return out
}
