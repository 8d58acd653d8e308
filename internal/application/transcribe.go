package application

import (
	"context"
	"fmt"
	"log/slog"
)

const TranscribeCommandID = "transcribe-selected"

func (p *Plugin) transcribeCommand() Command {
	return Command{
		ID:     TranscribeCommandID,
		Name:   "Transcribe Selected",
		Notice: "Error transcribing audio",
		run:    p.transcribeSelected,
	}
}

// transcribeSelected appends the transcript of the embedded audio file
// referenced by the selection.
func (p *Plugin) transcribeSelected(ctx context.Context, editor Editor, logger *slog.Logger) (bool, error) {
	selection := editor.Selection()

	filename, ok := ParseEmbed(selection)
	if !ok {
		return false, nil
	}

	file, ok := FindFile(p.files.Files(), filename)
	if !ok {
		logger.Debug("embedded file not found", "filename", filename)
		return false, nil
	}

	from, to := editor.SelectionRange()
	cfg := p.settings.Get()

	audio, err := p.files.ReadBinary(ctx, file)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", file.Path, err)
	}

	logger.Info("transcribing", "file", file.Name, "bytes", len(audio), "model", cfg.TranscriptionModel)

	segments, err := p.stt.Transcribe(ctx, TranscriptionRequest{
		URL:   cfg.TranscriptionURL(),
		Model: cfg.TranscriptionModel,
		Audio: audio,
	})
	if err != nil {
		return false, fmt.Errorf("transcribing: %w", err)
	}

	text := FormatTranscript(segments)
	if err := editor.ReplaceRange(selection+"\n"+text, from, to); err != nil {
		return false, fmt.Errorf("replacing selection: %w", err)
	}

	return true, nil
}
