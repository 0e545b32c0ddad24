package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

var ErrMissingAPIKey = errors.New("openai API key is required")

type IVision interface {
	Describe(ctx context.Context, image []byte, mimeType string, prompt string) (string, error)
}

type visionService struct {
	client *openai.Client
	model  string
}

// NewVision reads OPENAI_API_KEY and OPENAI_VISION_MODEL.
func NewVision() (IVision, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	model := os.Getenv("OPENAI_VISION_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}

	return &visionService{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (v *visionService) Describe(ctx context.Context, image []byte, mimeType string, prompt string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("empty image data")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := v.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: v.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: prompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    dataURL,
								Detail: openai.ImageURLDetailAuto,
							},
						},
					},
				},
			},
			Temperature: 0.2,
			MaxTokens:   800,
		},
	)
	if err != nil {
		return "", fmt.Errorf("ChatGPT API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from ChatGPT")
	}

	return resp.Choices[0].Message.Content, nil
}
