package notify

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

// Desktop shows a system notification, the closest thing to an in-editor
// notice when the host is a terminal.
type Desktop struct {
	title string
	send  func(title, message string) error
}

func NewDesktop(title string) *Desktop {
	return &Desktop{
		title: title,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

func (d *Desktop) Notify(_ context.Context, message string) error {
	if err := d.send(d.title, message); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}
