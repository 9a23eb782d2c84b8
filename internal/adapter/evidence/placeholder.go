package evidence

import (
	"regexp"
	"strings"
)

var placeholderRE = regexp.MustCompile(`\[\[[^\[\]]+\]\]`)

// sectionPlaceholders maps each manual section to the token the merge
// prompt inserts when evidence for it is missing.
var sectionPlaceholders = map[string]string{
	SectionOverview:     "[[NEEDS_OVERVIEW]]",
	SectionPurpose:      "[[NEEDS_PURPOSE]]",
	SectionHowToRun:     "[[NEEDS_RUN_INSTRUCTIONS]]",
	SectionInputs:       "[[NEEDS_INPUTS]]",
	SectionOutputs:      "[[NEEDS_OUTPUTS]]",
	SectionRequirements: "[[NEEDS_REQUIREMENTS]]",
	SectionExamples:     "[[NEEDS_EXAMPLES]]",
}

// PlaceholderFor returns the placeholder token for a section.
func PlaceholderFor(section string) string {
	return sectionPlaceholders[section]
}

// SectionFor resolves a placeholder token back to its section.
func SectionFor(token string) (string, bool) {
	for section, t := range sectionPlaceholders {
		if t == token {
			return section, true
		}
	}
	return "", false
}

// FindPlaceholders returns the unique placeholder tokens in text, in
// order of first appearance.
func FindPlaceholders(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range placeholderRE.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// StripPlaceholders removes placeholder tokens and collapses the blank
// space they leave behind.
func StripPlaceholders(text string) string {
	text = placeholderRE.ReplaceAllString(text, "")
	var kept []string
	blank := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			kept = append(kept, "")
			continue
		}
		blank = 0
		kept = append(kept, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
