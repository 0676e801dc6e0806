package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClauseTemplateLibraryResolve(t *testing.T) {
	lib := BuiltinClauseTemplates()

	clauses, tpl, ok := lib.Resolve("event_appearance", []string{"custom clause"})
	if !ok {
		t.Fatalf("Resolve: event_appearance missing")
	}
	if !tpl.RequiresWitness {
		t.Fatalf("event_appearance should require a witness")
	}
	if len(clauses) != len(tpl.Clauses)+1 || clauses[len(clauses)-1] != "custom clause" {
		t.Fatalf("Resolve: extras not appended: %v", clauses)
	}

	if _, _, ok := lib.Resolve("no_such_kind", nil); ok {
		t.Fatalf("Resolve: unknown kind resolved")
	}
}

func TestLoadClauseTemplatesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := `templates:
  podcast_guest:
    name: Podcast Guest Agreement
    clauses:
      - Athlete will appear on one episode.
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write template file: %v", err)
	}

	lib, err := LoadClauseTemplates(path)
	if err != nil {
		t.Fatalf("LoadClauseTemplates: %v", err)
	}
	clauses, tpl, ok := lib.Resolve("podcast_guest", nil)
	if !ok || tpl.Name != "Podcast Guest Agreement" || len(clauses) != 1 {
		t.Fatalf("Resolve loaded template: ok=%v tpl=%+v clauses=%v", ok, tpl, clauses)
	}

	if _, err := LoadClauseTemplates(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("LoadClauseTemplates: expected error for missing file")
	}
}
