package domain

// Block is a boundary-delimited piece of input text. Fenced blocks carry a
// complete ``` code fence and are never split further.
type Block struct {
	Text   string
	Fenced bool
}

// Chunk is a packed group of blocks under a token budget.
type Chunk struct {
	Index  int
	Text   string
	Tokens int
}

// SourceUnit is a node in the structural tree of a source file:
// the module itself, a type with its methods, or a function.
type SourceUnit struct {
	Kind      string
	Name      string
	Signature string
	Doc       string
	Source    string
	Line      int
	Children  []SourceUnit
}

const (
	UnitModule   = "module"
	UnitType     = "type"
	UnitFunction = "function"
	UnitMethod   = "method"
)

// Prompt roles understood by the summarizer.
const (
	RoleModule    = "module"
	RoleClass     = "class"
	RoleFunction  = "function"
	RoleReadme    = "readme"
	RoleProject   = "project"
	RoleDocstring = "docstring"
	RoleManual    = "user_manual"
)

type UnitDoc struct {
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Signature string    `json:"signature,omitempty"`
	Summary   string    `json:"summary"`
	Children  []UnitDoc `json:"children,omitempty"`
}

// ModuleDoc is the generated documentation for one source file.
type ModuleDoc struct {
	Path    string    `json:"path"`
	Summary string    `json:"summary"`
	Units   []UnitDoc `json:"units,omitempty"`
}

// ProjectDoc is the full generated documentation set for a repository.
type ProjectDoc struct {
	Root    string      `json:"root"`
	Summary string      `json:"summary,omitempty"`
	Readme  string      `json:"readme,omitempty"`
	Modules []ModuleDoc `json:"modules"`
}

// Manual is a generated user manual. When Heuristic is set the model was
// unavailable and Sections carries the keyword-derived fallback instead
// of Text.
type Manual struct {
	Text      string
	Sections  map[string]string
	Heuristic bool
}

// Snippet is a piece of evidence captured from a repository document.
type Snippet struct {
	Path    string
	Line    int
	Text    string
	FromDoc bool
}

// EvidenceIndex maps manual sections to supporting snippets and records
// which sections each file contributed to.
type EvidenceIndex struct {
	SectionSnippets map[string][]Snippet
	FileSections    map[string][]string
}
