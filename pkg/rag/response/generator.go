package response

import (
	"context"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/llm"
	"hof-chatbot-be/pkg/rag/prompt"
	"hof-chatbot-be/pkg/vectorstore"
)

// Generator produces the final grounded answer from retrieved records.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Generate answers the query from matches. An empty result set short-circuits
// to the not-found message; a model failure degrades to the apology rather
// than an error, because by this point the user is owed some reply.
func (g *Generator) Generate(ctx context.Context, query string, matches []vectorstore.Match, history []llm.Message) string {
	if len(matches) == 0 {
		return NotFound
	}

	promptText := prompt.NewBuilder(query, matches).Build()
	messages := append(append([]llm.Message{}, history...), llm.Message{Role: "user", Content: promptText})

	answer, err := g.llmProvider.Chat(ctx, messages)
	if err != nil {
		g.logger.Error(logger.ModuleChat, "answer generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return FallbackApology
	}
	return answer
}
