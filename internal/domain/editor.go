package domain

// Position is a zero-based line/column location inside a note.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// FileRef identifies a file known to the host file index.
type FileRef struct {
	Name string
	Path string
}
