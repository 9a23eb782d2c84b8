package llm

import (
	"fmt"
	"strings"

	"docgen/internal/domain"
)

// System prompts steering the documentation model.
const (
	// SystemPrompt is the default for code and document summarization.
	SystemPrompt = "You are not an assistant. You are a documentation engine that produces " +
		"factual summaries of source files. Do not refer to yourself. Do not explain what " +
		"you are doing. Only describe what the code defines or implements."

	// ChunkSystemPrompt drives the map stage of the manual flow.
	ChunkSystemPrompt = "You are writing part of a user manual. From the context provided, " +
		"draft guide material covering purpose, usage, inputs, outputs, and behavior. " +
		"Do not describe individual functions or implementation details. " +
		"Focus on user-level instructions."

	// MergeSystemPrompt drives the reduce stage of the manual flow.
	MergeSystemPrompt = "You are compiling a user manual. Combine the provided sections into " +
		"one cohesive guide with sections for Overview, Purpose & Problem Solving, How to Run, " +
		"Inputs, Outputs, System Requirements, and Examples. If information for a section is " +
		"missing, insert the matching placeholder token such as [[NEEDS_RUN_INSTRUCTIONS]]. " +
		"Concentrate on user-level instructions, not implementation details."
)

const commonRules = "- Do not refer to yourself, the summary, or the response.\n" +
	"- Do not include instructions, usage advice, or disclaimers.\n" +
	"- Do not say what is or is not included in the code.\n" +
	"- Do not explain how to run it.\n" +
	"- Just describe what is implemented.\n\n"

var promptTemplates = map[string]string{
	domain.RoleModule:   "Summarize the module below.\n\n" + commonRules + "Code:\n```\n%s\n```",
	domain.RoleClass:    "Summarize the type below.\n\n" + commonRules + "Code:\n```\n%s\n```",
	domain.RoleFunction: "Summarize the function below.\n\n" + commonRules + "Code:\n```\n%s\n```",
	domain.RoleReadme: "Below is content from a README or documentation file. Describe the " +
		"project's purpose, features, and architecture in two or three sentences of plain " +
		"prose. Do not include setup steps, do not refer to the file itself, and do not " +
		"speculate beyond the provided content.\n\n%s",
	domain.RoleProject: "Write a short project summary using only the information below. " +
		"Do not make assumptions and do not explain how to run the code. Plain prose only.\n\n%s",
	domain.RoleDocstring: "%s",
	domain.RoleManual: "Given the following context and documentation, write a clear user " +
		"manual for a technically literate audience covering purpose, the problem it solves, " +
		"how to run it, inputs, outputs, and examples.\n\n%s",
}

// BuildPrompt renders the user prompt for role. Unknown roles use the
// module template.
func BuildPrompt(role, text string) string {
	tpl, ok := promptTemplates[role]
	if !ok {
		tpl = promptTemplates[domain.RoleModule]
	}
	return fmt.Sprintf(tpl, text)
}

// promptLineSet holds every non-empty template and system prompt line,
// lowercased, so echoed prompt lines can be dropped from responses.
var promptLineSet = buildPromptLineSet()

func buildPromptLineSet() map[string]struct{} {
	set := make(map[string]struct{})
	add := func(s string) {
		for _, line := range strings.Split(s, "\n") {
			line = strings.ToLower(strings.TrimSpace(line))
			if line != "" {
				set[line] = struct{}{}
			}
		}
	}
	for _, tpl := range promptTemplates {
		add(fmt.Sprintf(tpl, ""))
	}
	add(SystemPrompt)
	add(ChunkSystemPrompt)
	add(MergeSystemPrompt)
	return set
}
