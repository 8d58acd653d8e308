package editor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

// Document is a note file on disk. Each replacement is written back
// immediately.
type Document struct {
	*Buffer
	path string
}

// OpenDocument loads path and selects [from, to). A nil range selects the
// whole note.
func OpenDocument(path string, from, to *domain.Position) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading note: %w", err)
	}
	text := string(data)

	if from == nil && to == nil {
		return &Document{Buffer: SelectAll(text), path: path}, nil
	}

	start, end := domain.Position{}, End(text)
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}

	buf, err := NewBuffer(text, start, end)
	if err != nil {
		return nil, fmt.Errorf("selecting in %s: %w", path, err)
	}
	return &Document{Buffer: buf, path: path}, nil
}

func (d *Document) ReplaceRange(text string, from, to domain.Position) error {
	if err := d.Buffer.ReplaceRange(text, from, to); err != nil {
		return err
	}
	return writeAtomic(d.path, []byte(d.Text()))
}

func (d *Document) Path() string {
	return d.path
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing note: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing note: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing note: %w", err)
	}
	return nil
}
