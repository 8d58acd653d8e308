package editor

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

// Clipboard uses the system clipboard as the selection and writes the
// replacement back to it.
type Clipboard struct {
	*Buffer
}

func OpenClipboard() (*Clipboard, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading clipboard: %w", err)
	}
	return &Clipboard{Buffer: SelectAll(text)}, nil
}

func (c *Clipboard) ReplaceRange(text string, from, to domain.Position) error {
	if err := c.Buffer.ReplaceRange(text, from, to); err != nil {
		return err
	}
	if err := clipboard.WriteAll(c.Text()); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}
