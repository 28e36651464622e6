package llm

import "context"

type Provider interface {
	// Generate answers question from contextText, the retrieved passages joined together
	Generate(ctx context.Context, question string, contextText string) (string, error)
}
