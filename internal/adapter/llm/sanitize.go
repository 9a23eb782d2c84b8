package llm

import (
	"regexp"
	"strings"

	"docgen/internal/adapter/tokenizer"
)

var badStartPhrases = []string{
	"summarize",
	"you are",
	"you can",
	"note that",
	"the code above",
	"this script",
	"here's how",
	"to run this",
	"let's",
	"for example",
	"you might",
	"we can",
	"should you",
	"if you want",
	"the summary",
	"this explanation",
	"this output",
	"this description",
	"this response",
}

var badContains = []string{
	"documentation engine",
	"summarize the following",
	"as an ai language model",
	"as a language model",
	"as an ai model",
	"i am an ai",
	"i'm an ai",
	"this summary",
	"does not include",
	"avoids addressing",
}

var scriptLeadRE = regexp.MustCompile(`^this (script|code|file) (does|is)\b`)

// Sanitize strips model control tokens, echoed prompt lines, list
// scaffolding, and assistant-style meta commentary from a response.
func Sanitize(text string) string {
	text = tokenizer.Scrub(text)

	var kept []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		stripped := strings.TrimSpace(line)
		lower := strings.ToLower(stripped)

		if _, echoed := promptLineSet[lower]; echoed {
			continue
		}
		if strings.HasPrefix(stripped, "-") || strings.HasPrefix(stripped, "*") {
			continue
		}
		if hasAnyPrefix(lower, badStartPhrases) {
			continue
		}
		if containsAny(lower, badContains) {
			continue
		}
		if scriptLeadRE.MatchString(lower) {
			continue
		}
		kept = append(kept, stripped)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
