package port

type Walker interface {
	// Sources returns source file paths under root matching the scan globs.
	Sources(root string) ([]string, error)

	// Documents returns documentation file paths under root, README first.
	Documents(root string) ([]string, error)
}

type FileReader interface {
	ReadFile(path string) (string, error)
}
