package genai

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGenaiHistory(t *testing.T) {
	history := toGenaiHistory([]openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "Be concise."},
		{Role: openai.ChatMessageRoleUser, Content: "你好"},
		{Role: openai.ChatMessageRoleAssistant, Content: "안녕"},
		{Role: openai.ChatMessageRoleUser, Content: ""},
	})

	require.Len(t, history, 3)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, genai.Text("System: Be concise."), history[0].Parts[0])
	assert.Equal(t, "user", history[1].Role)
	assert.Equal(t, "model", history[2].Role)
	assert.Equal(t, genai.Text("안녕"), history[2].Parts[0])
}

func TestValidateModel(t *testing.T) {
	assert.NoError(t, validateModel(string(GenaiModelFlash)))
	assert.Error(t, validateModel("gpt-4o-mini"))
}

func TestCreateChatCompletionRejectsInvalidRequests(t *testing.T) {
	c := New(nil)

	_, err := c.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "gpt-4"})
	assert.Error(t, err)

	_, err = c.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: string(GenaiModelFlash)})
	assert.Error(t, err)
}
