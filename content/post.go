package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/nijaru/yt-scribe/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	// Posts longer than maxPostWords are cut down to keepPostWords.
	maxPostWords  = 450
	keepPostWords = 400

	postMaxTokens        = 1000
	postTemperature      = 0.8
	postPresencePenalty  = 0.2
	postFrequencyPenalty = 0.2
)

// ChatAPI is the subset of the provider client used for text generation.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type PostGenerator struct {
	api    ChatAPI
	model  string
	logger *logrus.Logger
}

func NewPostGenerator(api ChatAPI, model string, logger *logrus.Logger) *PostGenerator {
	return &PostGenerator{api: api, model: model, logger: logger}
}

// GeneratePost turns a transcript into a social media post. The structure is
// requested by the prompt and never validated; only the length is enforced.
func (g *PostGenerator) GeneratePost(ctx context.Context, transcript, topicHint string) (string, error) {
	const op = "PostGenerator.GeneratePost"

	if strings.TrimSpace(transcript) == "" {
		return "", errors.InvalidInput(op, nil, "Text is required to generate a post")
	}

	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: postSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: postUserPrompt(transcript, topicHint)},
		},
		MaxTokens:        postMaxTokens,
		Temperature:      postTemperature,
		PresencePenalty:  postPresencePenalty,
		FrequencyPenalty: postFrequencyPenalty,
	})
	if err != nil {
		g.logger.WithField("operation", op).WithError(err).Error("Post generation failed")
		return "", errors.Remote(op, err, "Post generation failed: "+apiMessage(err))
	}
	if len(resp.Choices) == 0 {
		return "", errors.UnexpectedShape(op, errors.ErrUnexpectedResponse, "Unexpected response from the text generation service")
	}

	post, truncated := TruncateWords(resp.Choices[0].Message.Content, maxPostWords, keepPostWords)
	if truncated {
		post += "\n\n" + truncationNotice
	}

	g.logger.WithFields(logrus.Fields{
		"operation": op,
		"words":     len(strings.Fields(post)),
		"truncated": truncated,
	}).Info("Post generated")

	return post, nil
}

// TruncateWords keeps the first keep words of text when it has more than
// limit words. Whitespace between kept words collapses to single spaces.
func TruncateWords(text string, limit, keep int) (string, bool) {
	words := strings.Fields(text)
	if len(words) <= limit {
		return text, false
	}
	return strings.Join(words[:keep], " "), true
}

// AppendVideoLink adds a deep link to videoURL at startSeconds below post.
func AppendVideoLink(post, videoURL string, startSeconds int) string {
	sep := "?"
	if strings.Contains(videoURL, "?") {
		sep = "&"
	}
	spacer := "\n\n"
	if strings.HasSuffix(post, "\n") {
		spacer = "\n"
	}
	return fmt.Sprintf("%s%s%s %s%st=%d", post, spacer, videoLinkPrefix, videoURL, sep, startSeconds)
}

func apiMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
