package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const geminiModel = "gemma-3n-e4b-it"

// GeminiGenerator runs the conversation through Google's hosted Gemini API.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates the hosted backend. An empty API key is passed
// through to the client, which decides whether other ambient credentials can
// serve instead.
func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

// Generate implements the Generator interface using Gemini.
func (g *GeminiGenerator) Generate(ctx context.Context, conv Conversation, maxNewTokens int32) (string, error) {
	instruction, imageRefs := splitConversation(conv)

	var parts []*genai.Part
	for _, ref := range imageRefs {
		data, mimeType, err := readImage(ref)
		if err != nil {
			return "", err
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: data, MIMEType: mimeType},
		})
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: maxNewTokens,
	}
	if instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	if result.UsageMetadata != nil {
		log.Info().
			Str("model", geminiModel).
			Int("imageCount", len(imageRefs)).
			Int32("inputTokens", result.UsageMetadata.PromptTokenCount).
			Int32("outputTokens", result.UsageMetadata.CandidatesTokenCount).
			Msg("vision llm call")
	}

	return result.Text(), nil
}
