package evidence

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"docgen/internal/domain"
)

// Manual sections, in render order.
const (
	SectionOverview     = "Overview"
	SectionPurpose      = "Purpose & Problem Solving"
	SectionHowToRun     = "How to Run"
	SectionInputs       = "Inputs"
	SectionOutputs      = "Outputs"
	SectionRequirements = "System Requirements"
	SectionExamples     = "Examples"
)

// Sections lists the manual sections in render order.
var Sections = []string{
	SectionOverview,
	SectionPurpose,
	SectionHowToRun,
	SectionInputs,
	SectionOutputs,
	SectionRequirements,
	SectionExamples,
}

const (
	maxSnippetLines       = 5
	maxSnippetsPerSection = 10
)

// sectionPatterns is the fixed keyword table mapping each manual section
// to the lines that evidence it.
var sectionPatterns = map[string]*regexp.Regexp{
	SectionOverview:     regexp.MustCompile(`(?i)\b(overview|purpose|project|architecture|summary)\b`),
	SectionPurpose:      regexp.MustCompile(`(?i)\b(purpose|problem|solve[sd]?|goal|motivation)\b`),
	SectionHowToRun:     regexp.MustCompile(`(?i)\b(run|usage|use|execute|install|start|launch|command)\b`),
	SectionInputs:       regexp.MustCompile(`(?i)\b(input|argument|parameter|flag|option|stdin)\b`),
	SectionOutputs:      regexp.MustCompile(`(?i)\b(output|result|report|emit|write[sd]?|stdout)\b`),
	SectionRequirements: regexp.MustCompile(`(?i)\b(requirement|depend|require[sd]?|prerequisite|version|platform)\b`),
	SectionExamples:     regexp.MustCompile(`(?i)\b(example|sample|demo|tutorial)\b`),
}

// nonEvidenceDirs are path segments whose files never evidence Overview.
var nonEvidenceDirs = map[string]struct{}{
	"test": {}, "tests": {}, "testdata": {},
	"example": {}, "examples": {},
	"fixture": {}, "fixtures": {},
	"sample": {}, "samples": {},
}

// Doc is one input document for evidence mapping. FromDoc marks README
// and documentation-tree origin, which ranks ahead for Overview.
type Doc struct {
	Path    string
	Text    string
	FromDoc bool
}

// BuildIndex scans documents line by line against the section keyword
// table. A match captures the matching line plus the following run of
// non-blank, non-heading lines. Snippets are ranked per section and
// capped; files under test or fixture directories never evidence
// Overview.
func BuildIndex(docs []Doc) domain.EvidenceIndex {
	idx := domain.EvidenceIndex{
		SectionSnippets: make(map[string][]domain.Snippet),
		FileSections:    make(map[string][]string),
	}

	for _, doc := range docs {
		lines := strings.Split(doc.Text, "\n")
		contributed := make(map[string]bool)
		lastEnd := make(map[string]int)

		for i, line := range lines {
			stripped := strings.TrimSpace(line)
			if stripped == "" {
				continue
			}
			for _, section := range Sections {
				if section == SectionOverview && isTestPath(doc.Path) {
					continue
				}
				if i < lastEnd[section] {
					continue
				}
				if !sectionPatterns[section].MatchString(stripped) {
					continue
				}
				text, end := captureSnippet(lines, i)
				lastEnd[section] = end
				idx.SectionSnippets[section] = append(idx.SectionSnippets[section], domain.Snippet{
					Path:    doc.Path,
					Line:    i + 1,
					Text:    text,
					FromDoc: doc.FromDoc,
				})
				if !contributed[section] {
					contributed[section] = true
					idx.FileSections[doc.Path] = append(idx.FileSections[doc.Path], section)
				}
			}
		}
	}

	for section, snips := range idx.SectionSnippets {
		idx.SectionSnippets[section] = rankSnippets(section, snips)
	}

	return idx
}

// captureSnippet returns the snippet starting at line start and the index
// one past its last line.
func captureSnippet(lines []string, start int) (string, int) {
	end := start + 1
	for end < len(lines) && end-start < maxSnippetLines {
		s := strings.TrimSpace(lines[end])
		if s == "" || strings.HasPrefix(s, "#") {
			break
		}
		end++
	}
	snippet := make([]string, 0, end-start)
	for _, l := range lines[start:end] {
		snippet = append(snippet, strings.TrimSpace(l))
	}
	return strings.Join(snippet, "\n"), end
}

// rankSnippets orders a section's snippets: Overview prefers README and
// documentation origin, then longer snippets; other sections prefer
// longer snippets.
func rankSnippets(section string, snips []domain.Snippet) []domain.Snippet {
	sort.SliceStable(snips, func(i, j int) bool {
		if section == SectionOverview && snips[i].FromDoc != snips[j].FromDoc {
			return snips[i].FromDoc
		}
		return len(snips[i].Text) > len(snips[j].Text)
	})
	if len(snips) > maxSnippetsPerSection {
		snips = snips[:maxSnippetsPerSection]
	}
	return snips
}

func isTestPath(p string) bool {
	for _, seg := range strings.Split(path.Dir(strings.ToLower(p)), "/") {
		if _, ok := nonEvidenceDirs[seg]; ok {
			return true
		}
	}
	base := strings.ToLower(path.Base(p))
	return strings.HasSuffix(strings.TrimSuffix(base, path.Ext(base)), "_test")
}
