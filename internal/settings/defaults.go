package settings

import "github.com/ChrisRuff/obsidian-localai/internal/domain"

// Defaults returns the values used for every field missing from the
// persisted settings.
func Defaults() domain.Settings {
	return domain.Settings{
		ServerURL:             "http://localhost:8080",
		TranscriptionEndpoint: "/v1/audio/transcriptions",
		TranscriptionModel:    "whisper-1",
		CompletionEndpoint:    "/v1/chat/completions",
		CompletionModel:       "qwen2.5-1.5b-instruct",
	}
}
