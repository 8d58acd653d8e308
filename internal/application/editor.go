package application

import (
	"context"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

// Editor is the host's view of the active note.
type Editor interface {
	Selection() string
	SelectionRange() (from, to domain.Position)
	ReplaceRange(text string, from, to domain.Position) error
}

// FileIndex lists the files known to the host and reads their contents.
type FileIndex interface {
	Files() []domain.FileRef
	ReadBinary(ctx context.Context, file domain.FileRef) ([]byte, error)
}
