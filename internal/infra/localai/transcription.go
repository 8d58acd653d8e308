package localai

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/ChrisRuff/obsidian-localai/internal/application"
	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

type transcriptionResponse struct {
	Segments *[]domain.Segment `json:"segments"`
}

// Transcribe uploads the audio as multipart/form-data and returns the
// segment list of the response.
func (c *Client) Transcribe(ctx context.Context, req application.TranscriptionRequest) ([]domain.Segment, error) {
	body := c.encoder.EncodeTranscription(req.Audio, req.Model)

	var result transcriptionResponse
	err := c.post(ctx, "transcription", req.URL, body.ContentType(), body.Bytes, func(r io.Reader) error {
		if err := json.NewDecoder(r).Decode(&result); err != nil {
			return err
		}
		if result.Segments == nil {
			return errors.New("response has no segments")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return *result.Segments, nil
}
