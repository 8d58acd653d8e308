package editor

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

// Buffer is an in-memory note with a selection. Positions count lines and
// runes from zero.
type Buffer struct {
	text     string
	from, to domain.Position
	edits    int
}

// NewBuffer selects [from, to) in text.
func NewBuffer(text string, from, to domain.Position) (*Buffer, error) {
	start, err := offset(text, from)
	if err != nil {
		return nil, err
	}
	end, err := offset(text, to)
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, fmt.Errorf("selection end %v is before start %v", to, from)
	}
	return &Buffer{text: text, from: from, to: to}, nil
}

// SelectAll selects the whole text.
func SelectAll(text string) *Buffer {
	return &Buffer{text: text, to: End(text)}
}

func (b *Buffer) Selection() string {
	start, _ := offset(b.text, b.from)
	end, _ := offset(b.text, b.to)
	return b.text[start:end]
}

func (b *Buffer) SelectionRange() (domain.Position, domain.Position) {
	return b.from, b.to
}

// ReplaceRange swaps [from, to) for text. The selection then covers the
// inserted text.
func (b *Buffer) ReplaceRange(text string, from, to domain.Position) error {
	start, err := offset(b.text, from)
	if err != nil {
		return err
	}
	end, err := offset(b.text, to)
	if err != nil {
		return err
	}
	if end < start {
		return fmt.Errorf("range end %v is before start %v", to, from)
	}

	b.text = b.text[:start] + text + b.text[end:]
	b.from = from
	b.to = advance(from, text)
	b.edits++
	return nil
}

func (b *Buffer) Text() string {
	return b.text
}

func (b *Buffer) Edited() bool {
	return b.edits > 0
}

// End is the position just past the last rune of text.
func End(text string) domain.Position {
	return advance(domain.Position{}, text)
}

// ParsePosition reads "line:ch".
func ParsePosition(s string) (domain.Position, error) {
	line, ch, ok := strings.Cut(s, ":")
	if !ok {
		return domain.Position{}, fmt.Errorf("position %q: want line:ch", s)
	}
	l, err := strconv.Atoi(line)
	if err != nil || l < 0 {
		return domain.Position{}, fmt.Errorf("position %q: bad line", s)
	}
	c, err := strconv.Atoi(ch)
	if err != nil || c < 0 {
		return domain.Position{}, fmt.Errorf("position %q: bad column", s)
	}
	return domain.Position{Line: l, Ch: c}, nil
}

func advance(pos domain.Position, text string) domain.Position {
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return domain.Position{
			Line: pos.Line + strings.Count(text, "\n"),
			Ch:   utf8.RuneCountInString(text[i+1:]),
		}
	}
	return domain.Position{Line: pos.Line, Ch: pos.Ch + utf8.RuneCountInString(text)}
}

func offset(text string, pos domain.Position) (int, error) {
	if pos.Line < 0 || pos.Ch < 0 {
		return 0, fmt.Errorf("position %v out of range", pos)
	}

	start := 0
	for line := 0; line < pos.Line; line++ {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			return 0, fmt.Errorf("line %d out of range", pos.Line)
		}
		start += i + 1
	}

	lineEnd := len(text)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		lineEnd = start + i
	}

	at := start
	for n := 0; n < pos.Ch; n++ {
		if at >= lineEnd {
			return 0, fmt.Errorf("column %d out of range on line %d", pos.Ch, pos.Line)
		}
		_, size := utf8.DecodeRuneInString(text[at:])
		at += size
	}
	return at, nil
}
