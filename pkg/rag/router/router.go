// Package router decides how each incoming chat message is handled: answered
// instantly, sent through retrieval, answered with a clarification question,
// or apologized for.
package router

import (
	"context"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/llm"
	"hof-chatbot-be/pkg/rag/clarify"
	"hof-chatbot-be/pkg/rag/conversation"
	"hof-chatbot-be/pkg/rag/intent"
	"hof-chatbot-be/pkg/rag/response"
)

// Route constants
const (
	RouteInstant  = "instant"
	RouteRAG      = "rag"
	RouteClarify  = "clarify"
	RouteFallback = "fallback"
)

// ConfidenceGate is the minimum intent confidence for going straight to
// retrieval.
const ConfidenceGate = 0.6

// Decision is the routing outcome for one message.
type Decision struct {
	Route      string
	Confidence float64
	// Intent is set for RouteRAG.
	Intent *intent.Intent
	// Reply is the final answer text for RouteInstant and RouteFallback,
	// and the question text for RouteClarify.
	Reply         string
	Clarification *clarify.Clarification
	// ContextApplied reports that confirmed session context filled intent
	// slots this turn.
	ContextApplied        bool
	ClarificationResolved bool
}

// IntentResolver is the LLM collaborator.
type IntentResolver interface {
	Resolve(ctx context.Context, query string, history []llm.Message) (*intent.Intent, error)
}

type Router struct {
	resolver      IntentResolver
	builder       *clarify.Builder
	conversations *conversation.Manager
	logger        logger.ILogger
}

func NewRouter(resolver IntentResolver, builder *clarify.Builder, conversations *conversation.Manager, log logger.ILogger) *Router {
	return &Router{
		resolver:      resolver,
		builder:       builder,
		conversations: conversations,
		logger:        log,
	}
}

// Route runs the decision table for one message. Order matters: a pending
// clarification gets first claim on the message, then the lexical stage-0
// patterns, and only then the intent model.
func (r *Router) Route(ctx context.Context, sessionID, employeeID, message string) (*Decision, error) {
	state, err := r.conversations.GetOrCreate(ctx, sessionID, employeeID)
	if err != nil {
		return nil, err
	}

	turn, err := r.conversations.HandleUserMessage(ctx, sessionID, message)
	if err != nil {
		return nil, err
	}

	if turn.ClarificationResolved {
		r.logDecision(sessionID, RouteRAG, turn.MergedIntent.Confidence)
		return &Decision{
			Route:                 RouteRAG,
			Confidence:            turn.MergedIntent.Confidence,
			Intent:                turn.MergedIntent,
			ContextApplied:        true,
			ClarificationResolved: true,
		}, nil
	}

	if answer, ok := classifyInstant(message); ok {
		if err := r.conversations.AddAssistantResponse(ctx, sessionID, answer); err != nil {
			return nil, err
		}
		r.logDecision(sessionID, RouteInstant, 1.0)
		return &Decision{Route: RouteInstant, Confidence: 1.0, Reply: answer}, nil
	}

	history := providerHistory(r.conversations.RecentHistory(state, 10))
	resolved, err := r.resolver.Resolve(ctx, message, history)
	if err != nil {
		if addErr := r.conversations.AddAssistantResponse(ctx, sessionID, response.FallbackApology); addErr != nil {
			return nil, addErr
		}
		r.logDecision(sessionID, RouteFallback, 0)
		return &Decision{Route: RouteFallback, Reply: response.FallbackApology}, nil
	}

	contextApplied := r.conversations.ApplyConfirmedContext(state, resolved)

	if resolved.Confidence >= ConfidenceGate {
		r.logDecision(sessionID, RouteRAG, resolved.Confidence)
		return &Decision{
			Route:          RouteRAG,
			Confidence:     resolved.Confidence,
			Intent:         resolved,
			ContextApplied: contextApplied,
		}, nil
	}

	if c, ok := r.builder.Build(resolved); ok {
		err := r.conversations.SetPendingClarification(ctx, sessionID, &conversation.PendingClarification{
			Type:          c.Type,
			Question:      c.Question,
			Options:       c.Options,
			PartialIntent: resolved,
		})
		if err != nil {
			return nil, err
		}
		if err := r.conversations.AddAssistantResponse(ctx, sessionID, c.Question); err != nil {
			return nil, err
		}
		r.logDecision(sessionID, RouteClarify, resolved.Confidence)
		return &Decision{
			Route:          RouteClarify,
			Confidence:     resolved.Confidence,
			Reply:          c.Question,
			Clarification:  &c,
			ContextApplied: contextApplied,
		}, nil
	}

	if err := r.conversations.AddAssistantResponse(ctx, sessionID, response.FallbackApology); err != nil {
		return nil, err
	}
	r.logDecision(sessionID, RouteFallback, resolved.Confidence)
	return &Decision{Route: RouteFallback, Confidence: resolved.Confidence, Reply: response.FallbackApology}, nil
}

func (r *Router) logDecision(sessionID, route string, confidence float64) {
	r.logger.Info(logger.ModuleRouter, "message routed", map[string]interface{}{
		"session_id": sessionID,
		"route":      route,
		"confidence": confidence,
	})
}

func providerHistory(entries []conversation.HistoryEntry) []llm.Message {
	if len(entries) == 0 {
		return nil
	}
	messages := make([]llm.Message, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, llm.Message{Role: e.Role, Content: e.Content})
	}
	return messages
}
