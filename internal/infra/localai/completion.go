package localai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ChrisRuff/obsidian-localai/internal/application"
	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

type completionRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete posts a chat-completion request and returns the content of the
// first choice.
func (c *Client) Complete(ctx context.Context, req application.CompletionRequest) (string, error) {
	bodyBytes, err := json.Marshal(completionRequest{
		Model:    req.Model,
		Messages: req.Messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var result completionResponse
	err = c.post(ctx, "completion", req.URL, "application/json", bodyBytes, func(r io.Reader) error {
		if err := json.NewDecoder(r).Decode(&result); err != nil {
			return err
		}
		if len(result.Choices) == 0 {
			return errors.New("response has no choices")
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return result.Choices[0].Message.Content, nil
}
