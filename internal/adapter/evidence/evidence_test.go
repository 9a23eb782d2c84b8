package evidence

import (
	"strings"
	"testing"
)

func TestBuildIndexOverviewExcludesTestPaths(t *testing.T) {
	docs := []Doc{
		{
			Path:    "README.md",
			Text:    "# Project\nThe purpose of this project is indexing.\nIt scans repositories.",
			FromDoc: true,
		},
		{
			Path: "tests/helper.go",
			Text: "overview of the test harness purpose",
		},
		{
			Path: "cmd/main.go",
			Text: "main is the project entry point and parses arguments.",
		},
	}

	idx := BuildIndex(docs)

	overview := idx.SectionSnippets[SectionOverview]
	if len(overview) == 0 {
		t.Fatal("expected overview evidence")
	}
	for _, s := range overview {
		if strings.HasPrefix(s.Path, "tests/") {
			t.Errorf("overview snippet from excluded path %s", s.Path)
		}
	}
	if overview[0].Path != "README.md" {
		t.Errorf("expected README-origin snippet first, got %s", overview[0].Path)
	}

	// Other sections still accept test-path evidence.
	found := false
	for _, s := range idx.SectionSnippets[SectionPurpose] {
		if s.Path == "tests/helper.go" {
			found = true
		}
	}
	if !found {
		t.Error("purpose section should accept test-path evidence")
	}
}

func TestBuildIndexSnippetCapture(t *testing.T) {
	text := "Usage: run the tool with a path.\nIt accepts a directory.\nDefaults apply.\n\nunrelated paragraph"
	idx := BuildIndex([]Doc{{Path: "README.md", Text: text, FromDoc: true}})

	snips := idx.SectionSnippets[SectionHowToRun]
	if len(snips) == 0 {
		t.Fatal("expected how-to-run evidence")
	}
	got := snips[0].Text
	if !strings.HasPrefix(got, "Usage: run the tool") {
		t.Errorf("snippet should start at the matching line: %q", got)
	}
	if strings.Contains(got, "unrelated paragraph") {
		t.Errorf("snippet crossed a blank line: %q", got)
	}
	if snips[0].Line != 1 {
		t.Errorf("expected line 1, got %d", snips[0].Line)
	}
}

func TestBuildIndexSnippetCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("example usage line\n\n")
	}
	idx := BuildIndex([]Doc{{Path: "README.md", Text: b.String(), FromDoc: true}})

	if n := len(idx.SectionSnippets[SectionExamples]); n > 10 {
		t.Errorf("expected at most 10 snippets, got %d", n)
	}
}

func TestBuildIndexFileSections(t *testing.T) {
	idx := BuildIndex([]Doc{{
		Path:    "README.md",
		Text:    "Usage: run it.\n\nThe output is JSON.",
		FromDoc: true,
	}})

	sections := idx.FileSections["README.md"]
	if len(sections) < 2 {
		t.Fatalf("expected README to evidence at least 2 sections, got %v", sections)
	}
	seen := make(map[string]bool)
	for _, s := range sections {
		if seen[s] {
			t.Errorf("section %s recorded twice", s)
		}
		seen[s] = true
	}
	if !seen[SectionHowToRun] || !seen[SectionOutputs] {
		t.Errorf("expected how-to-run and outputs, got %v", sections)
	}
}

func TestFindPlaceholders(t *testing.T) {
	text := "Overview text\n[[NEEDS_OVERVIEW]] and [[FOO]] and [[NEEDS_OVERVIEW]] again"
	got := FindPlaceholders(text)

	if len(got) != 2 {
		t.Fatalf("expected 2 unique placeholders, got %v", got)
	}
	if got[0] != "[[NEEDS_OVERVIEW]]" || got[1] != "[[FOO]]" {
		t.Errorf("unexpected placeholders: %v", got)
	}
}

func TestStripPlaceholders(t *testing.T) {
	text := "## How to Run\n[[NEEDS_RUN_INSTRUCTIONS]]\n\n## Inputs\nA path."
	got := StripPlaceholders(text)

	if strings.Contains(got, "[[") {
		t.Errorf("placeholder survived: %q", got)
	}
	if !strings.Contains(got, "## Inputs\nA path.") {
		t.Errorf("content lost while stripping: %q", got)
	}
}

func TestInferSectionsDefaults(t *testing.T) {
	sections := InferSections([]Doc{{
		Path:    "README.md",
		Text:    "Usage: docgen generate .",
		FromDoc: true,
	}})

	if sections[SectionHowToRun] != "Usage: docgen generate ." {
		t.Errorf("unexpected how-to-run: %q", sections[SectionHowToRun])
	}
	if sections[SectionExamples] != NoInformation {
		t.Errorf("unevidenced section should default, got %q", sections[SectionExamples])
	}
}

func TestSectionForRoundtrip(t *testing.T) {
	for _, section := range Sections {
		token := PlaceholderFor(section)
		if token == "" {
			t.Fatalf("no placeholder for %s", section)
		}
		got, ok := SectionFor(token)
		if !ok || got != section {
			t.Errorf("roundtrip failed for %s: %s, %v", section, got, ok)
		}
	}
}
