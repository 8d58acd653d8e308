package application

import (
	"context"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

type TranscriptionRequest struct {
	URL   string
	Model string
	Audio []byte
}

type SpeechToText interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) ([]domain.Segment, error)
}

type CompletionRequest struct {
	URL      string
	Model    string
	Messages []domain.ChatMessage
}

type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

