package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	yaOpenai "github.com/visionex-project/imagetrans/pkg/openai"
)

// Client translates one recognized text at a time.
type Client interface {
	Translate(ctx context.Context, text string, source language.Tag, target language.Tag) (string, error)
}

type client struct {
	// Either the OpenAI adapter or the Gemini adapter.
	chatClient yaOpenai.Client
	// E.g., gpt-4o-mini, gemini-1.5-flash
	model string
}

// New creates a translation client over any chat completion backend.
func New(chatClient yaOpenai.Client, model string) Client {
	return &client{chatClient: chatClient, model: model}
}

var errEmptyTranslation = errors.New("empty translation response")

func (c *client) Translate(ctx context.Context, text string, source language.Tag, target language.Tag) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: `You are a professional translator for e-commerce product images.
Translate the text accurately and concisely, preserving the original meaning, numbers, units and brand names.
Return only the translation, without quotes, explanations or additional text.`,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Translate from %s to %s:\n%s", languageName(source), languageName(target), text),
			},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	}

	response, err := c.chatClient.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	content, err := yaOpenai.GetCompletionContent(response)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	translated := strings.TrimSpace(content)
	if translated == "" {
		return "", errEmptyTranslation
	}
	return translated, nil
}

// E.g., zh-CN -> "Chinese (China)", ko -> "Korean"
func languageName(tag language.Tag) string {
	if tag == language.Und {
		return "the detected language"
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return tag.String()
}
