package content

import (
	"context"
	"strings"

	"github.com/nijaru/yt-scribe/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// ImageAPI is the subset of the provider client used for image synthesis.
type ImageAPI interface {
	CreateImage(ctx context.Context, request openai.ImageRequest) (openai.ImageResponse, error)
}

type GeneratedImage struct {
	ImageB64 string `json:"image_b64"`
	Prompt   string `json:"revised_prompt"`
}

type ImageGenerator struct {
	chat       ChatAPI
	images     ImageAPI
	chatModel  string
	imageModel string
	logger     *logrus.Logger
}

func NewImageGenerator(chat ChatAPI, images ImageAPI, chatModel, imageModel string, logger *logrus.Logger) *ImageGenerator {
	return &ImageGenerator{
		chat:       chat,
		images:     images,
		chatModel:  chatModel,
		imageModel: imageModel,
		logger:     logger,
	}
}

// GenerateImage condenses post into a visual prompt and renders it as a
// portrait PNG.
func (g *ImageGenerator) GenerateImage(ctx context.Context, post string) (*GeneratedImage, error) {
	const op = "ImageGenerator.GenerateImage"

	if strings.TrimSpace(post) == "" {
		return nil, errors.InvalidInput(op, nil, "Post text is required to generate an image")
	}

	log := g.logger.WithField("operation", op)

	promptResp, err := g.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: imageSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: post},
		},
	})
	if err != nil {
		log.WithError(err).Error("Image prompt generation failed")
		return nil, errors.Remote(op, err, "Image prompt generation failed: "+apiMessage(err))
	}
	if len(promptResp.Choices) == 0 {
		return nil, errors.UnexpectedShape(op, errors.ErrUnexpectedResponse, "Unexpected response from the text generation service")
	}
	prompt := strings.TrimSpace(promptResp.Choices[0].Message.Content)

	imageResp, err := g.images.CreateImage(ctx, openai.ImageRequest{
		Prompt:            prompt,
		Model:             g.imageModel,
		N:                 1,
		Size:              "1024x1536",
		Quality:           "high",
		Background:        "auto",
		OutputFormat:      "png",
		OutputCompression: 100,
		Moderation:        "auto",
	})
	if err != nil {
		log.WithError(err).Error("Image generation failed")
		return nil, errors.Remote(op, err, "Image generation failed: "+apiMessage(err))
	}
	if len(imageResp.Data) == 0 || imageResp.Data[0].B64JSON == "" {
		return nil, errors.UnexpectedShape(op, errors.ErrUnexpectedResponse, "Unexpected response from the image service")
	}

	log.WithField("prompt_chars", len(prompt)).Info("Image generated")

	return &GeneratedImage{ImageB64: imageResp.Data[0].B64JSON, Prompt: prompt}, nil
}
