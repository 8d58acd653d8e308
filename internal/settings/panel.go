package settings

import (
	"errors"
	"fmt"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

var ErrUnknownField = errors.New("unknown settings field")

// Field is one editable text field of the settings panel.
type Field struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

type fieldSpec struct {
	key         string
	name        string
	description string
	placeholder string
	get         func(domain.Settings) string
	set         func(*domain.Settings, string)
}

var fieldSpecs = []fieldSpec{
	{
		key:         "localai_url",
		name:        "LocalAI URL",
		description: "Enter the url of your LocalAI instance",
		placeholder: "http://localhost:8080",
		get:         func(s domain.Settings) string { return s.ServerURL },
		set:         func(s *domain.Settings, v string) { s.ServerURL = v },
	},
	{
		key:         "transcription_endpoint",
		name:        "Transcription Endpoint",
		description: "Endpoint for transcription requests",
		placeholder: "/v1/audio/transcriptions",
		get:         func(s domain.Settings) string { return s.TranscriptionEndpoint },
		set:         func(s *domain.Settings, v string) { s.TranscriptionEndpoint = v },
	},
	{
		key:         "transcription_model",
		name:        "Transcription Model",
		description: "Select the model to use for transcription",
		placeholder: "whisper-1",
		get:         func(s domain.Settings) string { return s.TranscriptionModel },
		set:         func(s *domain.Settings, v string) { s.TranscriptionModel = v },
	},
	{
		key:         "text_generation_endpoint",
		name:        "Text Generation Endpoint",
		description: "Endpoint for text generation requests",
		placeholder: "/v1/chat/completions",
		get:         func(s domain.Settings) string { return s.CompletionEndpoint },
		set:         func(s *domain.Settings, v string) { s.CompletionEndpoint = v },
	},
	{
		key:         "text_generation_model",
		name:        "Text Generation Model",
		description: "Select the model to use for text generation",
		placeholder: "qwen2.5-1.5b-instruct",
		get:         func(s domain.Settings) string { return s.CompletionModel },
		set:         func(s *domain.Settings, v string) { s.CompletionModel = v },
	},
}

// Panel binds one text field per settings field to a Holder. Every change
// is written through immediately; values are not validated.
type Panel struct {
	holder *Holder
}

func NewPanel(holder *Holder) *Panel {
	return &Panel{holder: holder}
}

// Fields renders the panel with the current values, in display order.
func (p *Panel) Fields() []Field {
	current := p.holder.Get()

	fields := make([]Field, 0, len(fieldSpecs))
	for _, f := range fieldSpecs {
		fields = append(fields, Field{
			Key:         f.key,
			Name:        f.name,
			Description: f.description,
			Placeholder: f.placeholder,
			Value:       f.get(current),
		})
	}
	return fields
}

// Set handles a change event on the field identified by key.
func (p *Panel) Set(key, value string) error {
	for _, f := range fieldSpecs {
		if f.key != key {
			continue
		}
		return p.holder.Update(func(s *domain.Settings) {
			f.set(s, value)
		})
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, key)
}
