package editor

import (
	"fmt"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

// Detached holds a selection sent by a remote editor. The replacement is
// recorded rather than applied so it can be returned to the caller.
type Detached struct {
	selection string
	from, to  domain.Position

	Replaced    bool
	Replacement string
}

func NewDetached(selection string, from, to domain.Position) *Detached {
	return &Detached{selection: selection, from: from, to: to}
}

func (d *Detached) Selection() string {
	return d.selection
}

func (d *Detached) SelectionRange() (domain.Position, domain.Position) {
	return d.from, d.to
}

func (d *Detached) ReplaceRange(text string, from, to domain.Position) error {
	if from != d.from || to != d.to {
		return fmt.Errorf("range %v-%v does not match the selection %v-%v", from, to, d.from, d.to)
	}
	d.Replaced = true
	d.Replacement = text
	return nil
}
