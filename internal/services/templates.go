package services

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ClauseTemplate is one contract template kind: a display name plus the
// default clause list merged into every contract generated from it.
type ClauseTemplate struct {
	Name            string   `yaml:"name"`
	Clauses         []string `yaml:"clauses"`
	RequiresWitness bool     `yaml:"requires_witness"`
}

type clauseTemplateFile struct {
	Templates map[string]ClauseTemplate `yaml:"templates"`
}

// ClauseTemplateLibrary resolves template kinds to clause lists. The library
// is static configuration: loaded once at startup, read-only afterwards.
type ClauseTemplateLibrary struct {
	templates map[string]ClauseTemplate
}

// LoadClauseTemplates reads a YAML template file. An empty path yields the
// built-in defaults.
func LoadClauseTemplates(path string) (*ClauseTemplateLibrary, error) {
	if path == "" {
		return BuiltinClauseTemplates(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clause templates: %w", err)
	}
	var file clauseTemplateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse clause templates: %w", err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("clause template file %q defines no templates", path)
	}
	return &ClauseTemplateLibrary{templates: file.Templates}, nil
}

// BuiltinClauseTemplates is the fallback library used when no template file is
// configured.
func BuiltinClauseTemplates() *ClauseTemplateLibrary {
	return &ClauseTemplateLibrary{templates: map[string]ClauseTemplate{
		"social_media_promotion": {
			Name: "Social Media Promotion Agreement",
			Clauses: []string{
				"Athlete will publish the agreed promotional content on the agreed channels by the effective date.",
				"Brand receives a limited license to repost the content for the term of this agreement.",
				"Compensation is due within 30 days of content publication.",
			},
		},
		"event_appearance": {
			Name: "Event Appearance Agreement",
			Clauses: []string{
				"Athlete will attend the event named in the deal for the agreed duration.",
				"Brand covers reasonable travel and accommodation expenses.",
				"Cancellation within 72 hours of the event forfeits 50% of compensation.",
			},
			RequiresWitness: true,
		},
		"brand_ambassador": {
			Name: "Brand Ambassador Agreement",
			Clauses: []string{
				"Athlete will represent the brand exclusively within the agreed product category for the term.",
				"Athlete will not disparage the brand during or after the term.",
				"Either party may terminate with 30 days written notice.",
			},
		},
	}}
}

// Kinds lists the known template kinds, sorted.
func (l *ClauseTemplateLibrary) Kinds() []string {
	out := make([]string, 0, len(l.templates))
	for k := range l.templates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Resolve merges a template's default clauses with per-deal extras. Unknown
// kinds return ok=false.
func (l *ClauseTemplateLibrary) Resolve(kind string, extra []string) (clauses []string, tpl ClauseTemplate, ok bool) {
	tpl, ok = l.templates[kind]
	if !ok {
		return nil, ClauseTemplate{}, false
	}
	clauses = make([]string, 0, len(tpl.Clauses)+len(extra))
	clauses = append(clauses, tpl.Clauses...)
	clauses = append(clauses, extra...)
	return clauses, tpl, true
}
