// Package intent turns a raw user message into a structured query intent via
// a single deterministic LLM call. No retrieval happens here.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/llm"
)

// Intent is the structured reading of one user message.
type Intent struct {
	Type            string   `json:"type"`             // data_query, general, smalltalk
	Confidence      float64  `json:"confidence"`       // 0.0-1.0
	Query           string   `json:"query"`            // normalized search query
	TemplateType    string   `json:"template_type"`    // compensation, policy, override, or empty
	Period          string   `json:"period"`           // e.g. 2025-07, or empty
	Company         string   `json:"company"`          // insurer name, or empty
	CalculationType string   `json:"calculation_type"` // total, average, comparison, or empty
	Fields          []string `json:"fields"`           // specific fields asked about
}

// Intent type constants
const (
	TypeDataQuery = "data_query"
	TypeGeneral   = "general"
	TypeSmalltalk = "smalltalk"
)

// Resolver performs pure LLM-based intent resolution.
type Resolver struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewResolver(llmProvider llm.LLMProvider, log logger.ILogger) *Resolver {
	return &Resolver{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Resolve analyzes the user query and produces a structured intent.
// Temperature 0 keeps the classification deterministic. An LLM transport
// error is returned to the caller, which routes the turn to a fallback
// answer; a malformed response degrades to a low-confidence intent instead.
func (r *Resolver) Resolve(ctx context.Context, query string, history []llm.Message) (*Intent, error) {
	prompt := r.buildPrompt(query, history)

	response, err := r.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		r.logger.Error(logger.ModuleRouter, "intent resolution call failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("intent resolution: %w", err)
	}

	intent, err := r.parseIntent(response)
	if err != nil {
		r.logger.Warn(logger.ModuleRouter, "intent parsing failed, degrading to low confidence", map[string]interface{}{
			"error": err.Error(),
		})
		return &Intent{
			Type:       TypeDataQuery,
			Confidence: 0.3,
			Query:      query,
		}, nil
	}

	r.logger.Info(logger.ModuleRouter, "intent resolved", map[string]interface{}{
		"type":       intent.Type,
		"template":   intent.TemplateType,
		"period":     intent.Period,
		"confidence": intent.Confidence,
	})

	return intent, nil
}

func (r *Resolver) buildPrompt(query string, history []llm.Message) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are an intent analyzer for a Korean insurance compensation chatbot.\n")
	prompt.WriteString("Your ONLY job is to classify what the user is asking about. You do NOT answer questions.\n")
	prompt.WriteString("</system>\n\n")

	if len(history) > 0 {
		prompt.WriteString("<recent_conversation>\n")
		start := len(history) - 6
		if start < 0 {
			start = 0
		}
		for _, msg := range history[start:] {
			prompt.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		}
		prompt.WriteString("</recent_conversation>\n\n")
	}

	prompt.WriteString("<user_query>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</user_query>\n\n")

	prompt.WriteString("<classification>\n")
	prompt.WriteString("type: one of\n")
	prompt.WriteString("  data_query - asks about the user's own compensation data (수수료, 시책, 오버라이드, 환수, 실적)\n")
	prompt.WriteString("  general    - general question about compensation concepts, no personal data needed\n")
	prompt.WriteString("  smalltalk  - greeting or chitchat\n\n")
	prompt.WriteString("template_type: which data partition, when determinable\n")
	prompt.WriteString("  compensation - 수수료/커미션 details\n")
	prompt.WriteString("  policy       - 시책/프로모션 incentives\n")
	prompt.WriteString("  override     - 오버라이드/조직수당\n")
	prompt.WriteString("  (empty when the user did not indicate one)\n\n")
	prompt.WriteString("period: normalize to YYYY-MM when a month is named ('7월' → the most recent July), empty otherwise.\n")
	prompt.WriteString("company: insurer name if mentioned, empty otherwise.\n")
	prompt.WriteString("calculation_type: total, average, comparison, or empty.\n")
	prompt.WriteString("fields: specific field names asked about, e.g. [\"환수금\"], or [].\n")
	prompt.WriteString("confidence: how certain you are of this reading, 0.0-1.0. Be conservative: vague queries get below 0.6.\n")
	prompt.WriteString("</classification>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"type\": \"data_query|general|smalltalk\",\n")
	prompt.WriteString("  \"confidence\": 0.95,\n")
	prompt.WriteString("  \"query\": \"normalized search query in Korean\",\n")
	prompt.WriteString("  \"template_type\": \"compensation|policy|override or empty\",\n")
	prompt.WriteString("  \"period\": \"YYYY-MM or empty\",\n")
	prompt.WriteString("  \"company\": \"insurer or empty\",\n")
	prompt.WriteString("  \"calculation_type\": \"total|average|comparison or empty\",\n")
	prompt.WriteString("  \"fields\": []\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func (r *Resolver) parseIntent(response string) (*Intent, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var intent Intent
	if err := json.Unmarshal([]byte(jsonContent), &intent); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	intent.Type = strings.ToLower(strings.TrimSpace(intent.Type))
	switch intent.Type {
	case TypeDataQuery, TypeGeneral, TypeSmalltalk:
	default:
		intent.Type = TypeDataQuery
	}
	if intent.Query == "" {
		return nil, fmt.Errorf("intent has no query")
	}
	if intent.Confidence < 0 {
		intent.Confidence = 0
	}
	if intent.Confidence > 1 {
		intent.Confidence = 1
	}
	intent.TemplateType = strings.ToLower(strings.TrimSpace(intent.TemplateType))

	return &intent, nil
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
