package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/customHttpClient"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewGeminiClient(ctx context.Context, modelName string, apikey string) (llm.Provider, error) {
	if apikey == "" {
		return nil, errors.New("GOOGLE_API_KEY not set")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.Client(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, question string, contextText string) (string, error) {
	log := c.logger.WithTrace(ctx)

	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(llm.BuildPrompt(question, contextText)),
		contentConfig,
	)
	if err != nil {
		log.Error("Gemini call failed", "error", err)
		return "", err
	}
	return result.Text(), nil
}
