package evidence

// NoInformation fills sections that nothing in the repository evidences.
const NoInformation = "No information available."

// InferSections produces a section map straight from evidence, with no
// model involved. Used by the explain flow and as the degraded output
// when every map call fails.
func InferSections(docs []Doc) map[string]string {
	idx := BuildIndex(docs)

	out := make(map[string]string, len(Sections))
	for _, section := range Sections {
		if snips := idx.SectionSnippets[section]; len(snips) > 0 {
			out[section] = snips[0].Text
		} else {
			out[section] = NoInformation
		}
	}
	return out
}
