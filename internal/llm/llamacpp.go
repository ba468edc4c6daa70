package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// LlamaGenerator runs the conversation through a local llama.cpp server
// speaking the OpenAI-compatible chat completions API.
type LlamaGenerator struct {
	client *resty.Client
}

// NewLlamaGenerator creates the local backend pointing at serverURL.
func NewLlamaGenerator(serverURL string) *LlamaGenerator {
	client := resty.New().SetBaseURL(serverURL)
	return &LlamaGenerator{client: client}
}

// Health checks that the server is up and has a model loaded. A dead server
// should fail engine construction, not every image.
func (l *LlamaGenerator) Health(ctx context.Context) error {
	res, err := l.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("llama server health check: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("llama server health check: status %d", res.StatusCode())
	}
	return nil
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Messages  []chatMessage `json:"messages"`
	MaxTokens int32         `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate implements the Generator interface against the llama.cpp server.
// Images are embedded as base64 data URLs in the user message.
func (l *LlamaGenerator) Generate(ctx context.Context, conv Conversation, maxNewTokens int32) (string, error) {
	instruction, imageRefs := splitConversation(conv)

	var messages []chatMessage
	if instruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: instruction})
	}

	var parts []chatContentPart
	for _, ref := range imageRefs {
		data, mimeType, err := readImage(ref)
		if err != nil {
			return "", err
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
		parts = append(parts, chatContentPart{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL}})
	}
	messages = append(messages, chatMessage{Role: "user", Content: parts})

	var out chatResponse
	res, err := l.client.R().
		SetContext(ctx).
		SetBody(chatRequest{Messages: messages, MaxTokens: maxNewTokens}).
		SetResult(&out).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("chat completion failed: status %d: %s", res.StatusCode(), res.String())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completion response")
	}

	return out.Choices[0].Message.Content, nil
}
