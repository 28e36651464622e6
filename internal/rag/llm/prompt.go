package llm

import (
	"strings"
)

const promptTemplate = `
You are a helpful assistant. Use the context below to answer the question accurately.

If a section title like "Introduction", "Methods", or "Conclusion" is relevant, consider it carefully.

Context:
{context}

Question:
{question}

If the answer is not in the context, say in the language of the user that you "couldn't find the answer in the documents."
if the language is spanish and the answer is not in the context, say this: "Lo siento,no tengo respuesta para tu consulta. ¿Podrías darme un poco más de detalle o decirlo de otra forma ?"
`

// BuildPrompt fills the answer prompt. Substitution is single pass so braces in
// the context or question are left alone.
func BuildPrompt(question string, contextText string) string {
	return strings.NewReplacer("{context}", contextText, "{question}", question).Replace(promptTemplate)
}

// phrasings the prompt asks the model to use when the context has no answer
var notFoundPrefixes = []string{
	"je n'ai pas trouvé la réponse",
	"i couldn't find the answer",
	"i could not find the answer",
	"i couldn’t find the answer",
	"lo siento,no tengo respuesta",
	"lo siento, no tengo respuesta",
}

// IsNotFoundAnswer reports whether the model declared the answer absent from the documents.
func IsNotFoundAnswer(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	for _, p := range notFoundPrefixes {
		if strings.HasPrefix(a, p) {
			return true
		}
	}
	return strings.Contains(a, "couldn't find the answer in the documents") ||
		strings.Contains(a, "couldn’t find the answer in the documents")
}
