package domain

// Settings is the plugin configuration persisted by the host.
type Settings struct {
	ServerURL             string `yaml:"localai_url" json:"localai_url" toml:"localai_url"`
	TranscriptionEndpoint string `yaml:"transcription_endpoint" json:"transcription_endpoint" toml:"transcription_endpoint"`
	TranscriptionModel    string `yaml:"transcription_model" json:"transcription_model" toml:"transcription_model"`
	CompletionEndpoint    string `yaml:"text_generation_endpoint" json:"text_generation_endpoint" toml:"text_generation_endpoint"`
	CompletionModel       string `yaml:"text_generation_model" json:"text_generation_model" toml:"text_generation_model"`
}

// TranscriptionURL joins the server URL and the transcription endpoint as-is.
func (s Settings) TranscriptionURL() string {
	return s.ServerURL + s.TranscriptionEndpoint
}

// CompletionURL joins the server URL and the completion endpoint as-is.
func (s Settings) CompletionURL() string {
	return s.ServerURL + s.CompletionEndpoint
}
