package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

const (
	SummarizeCommandID = "summarize-selected"

	summarizePrompt = "Summarize the following: "
)

func (p *Plugin) summarizeCommand() Command {
	return Command{
		ID:     SummarizeCommandID,
		Name:   "Summarize Selected",
		Notice: "Error summarizing text",
		run:    p.summarizeSelected,
	}
}

func (p *Plugin) summarizeSelected(ctx context.Context, editor Editor, logger *slog.Logger) (bool, error) {
	from, to := editor.SelectionRange()
	selection := editor.Selection()
	cfg := p.settings.Get()

	logger.Info("summarizing", "chars", len(selection), "model", cfg.CompletionModel)

	summary, err := p.gen.Complete(ctx, CompletionRequest{
		URL:   cfg.CompletionURL(),
		Model: cfg.CompletionModel,
		Messages: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: summarizePrompt},
			{Role: domain.RoleUser, Content: selection},
		},
	})
	if err != nil {
		return false, fmt.Errorf("completing: %w", err)
	}

	if err := editor.ReplaceRange(selection+"\n"+summary, from, to); err != nil {
		return false, fmt.Errorf("replacing selection: %w", err)
	}

	return true, nil
}
