package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
)

// Client serves OpenAI-shaped chat completion requests with Gemini, so the translation client can use either backend.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type client struct {
	genaiClient *genai.Client
}

func New(genaiClient *genai.Client) Client {
	return &client{genaiClient: genaiClient}
}

type GenaiModel string

const (
	GenaiModelFlash GenaiModel = "gemini-1.5-flash"
)

func (c *client) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := validateModel(request.Model); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if len(request.Messages) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no messages in request")
	}

	genaiModel := c.genaiClient.GenerativeModel(request.Model)

	chatSession := genaiModel.StartChat()
	chatSession.History = toGenaiHistory(request.Messages[:len(request.Messages)-1])

	requestMessage := request.Messages[len(request.Messages)-1]
	resp, err := chatSession.SendMessage(ctx, genai.Text(requestMessage.Content))
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no response from model")
	}

	return openai.ChatCompletionResponse{
		Model: request.Model,
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: fmt.Sprintf("%s", resp.Candidates[0].Content.Parts[0]),
				},
			},
		},
	}, nil
}

// System messages have no Gemini role, so they are sent as user turns with a prefix.
func toGenaiHistory(messages []openai.ChatCompletionMessage) []*genai.Content {
	history := []*genai.Content{}
	for _, message := range messages {
		if message.Content == "" {
			continue
		}
		text := message.Content
		if message.Role == openai.ChatMessageRoleSystem {
			text = "System: " + text
		}
		history = append(history, &genai.Content{
			Parts: []genai.Part{genai.Text(text)},
			Role:  toGenaiRole(message.Role),
		})
	}
	return history
}

func toGenaiRole(role string) string {
	switch role {
	case openai.ChatMessageRoleAssistant:
		return "model"
	default:
		return "user"
	}
}

func validateModel(model string) error {
	if strings.HasPrefix(model, "gemini-") {
		return nil
	}
	return fmt.Errorf("invalid model %q", model)
}
