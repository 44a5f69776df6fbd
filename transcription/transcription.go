package transcription

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nijaru/yt-scribe/errors"
	"github.com/nijaru/yt-scribe/validation"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// AudioAPI is the subset of the provider client used for speech to text.
type AudioAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

type Client struct {
	api    AudioAPI
	model  string
	logger *logrus.Logger
}

func NewClient(api AudioAPI, model string, logger *logrus.Logger) *Client {
	if model == "" {
		model = openai.Whisper1
	}
	return &Client{api: api, model: model, logger: logger}
}

// Transcribe sends the audio file at path to the provider and returns plain
// text. A language of "auto" leaves detection to the provider.
func (c *Client) Transcribe(ctx context.Context, path, language string) (string, error) {
	const op = "Client.Transcribe"

	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Internal(op, err, "Failed to read audio file")
	}
	if info.Size() > validation.MaxAudioBytes {
		return "", errors.ResourceLimit(op, errors.ErrFileTooLarge,
			"File too large for transcription (max 25MB)")
	}

	req := openai.AudioRequest{
		Model:    c.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatText,
	}
	if language != "" && language != validation.LanguageAuto {
		req.Language = language
	}

	log := c.logger.WithFields(logrus.Fields{
		"operation": op,
		"model":     c.model,
		"language":  language,
		"size":      info.Size(),
	})
	log.Info("Starting transcription")

	resp, err := c.api.CreateTranscription(ctx, req)
	if err != nil {
		log.WithError(err).Error("Transcription request failed")
		return "", remoteError(op, err)
	}

	text := strings.TrimSpace(resp.Text)
	log.WithField("chars", len(text)).Info("Transcription completed")
	return text, nil
}

func remoteError(op string, err error) error {
	msg := err.Error()
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "file size"):
		return errors.Remote(op, err, "File too large, the transcription service accepts at most 25MB")
	case strings.Contains(lower, "invalid file format"):
		return errors.Remote(op, err, "File format not supported by the transcription service")
	default:
		return errors.Remote(op, err, fmt.Sprintf("Transcription failed: %s", msg))
	}
}
