package openaiLLM

import (
	"context"
	"errors"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/customHttpClient"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api       openai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewOpenAIClient(modelName string, apikey string) (llm.Provider, error) {
	if apikey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	api := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithHTTPClient(customHttpClient.Client()),
	)

	logger := logger_i.NewLogger("llm_openai")
	logger.Info("OpenAI chat client created", "model", modelName)
	return &llmClient{api: api, modelName: modelName, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, question string, contextText string) (string, error) {
	log := c.logger.WithTrace(ctx)

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(llm.BuildPrompt(question, contextText)),
		},
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		log.Error("OpenAI call failed", "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
