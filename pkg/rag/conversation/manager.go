package conversation

import (
	"context"
	"fmt"
	"time"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/rag/ambiguity"
	"hof-chatbot-be/pkg/rag/clarify"
	"hof-chatbot-be/pkg/rag/intent"
)

// Result is what HandleUserMessage tells the caller about the turn.
type Result struct {
	ShouldProcessAsRAG bool
	// MergedIntent is set when the message resolved a pending
	// clarification; the caller skips intent resolution for this turn.
	MergedIntent          *intent.Intent
	ContextApplied        bool
	ClarificationResolved bool
}

// Manager is the single logical owner of conversation state.
type Manager struct {
	store  Store
	logger logger.ILogger
	now    func() time.Time
}

func NewManager(store Store, log logger.ILogger, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: store, logger: log, now: now}
}

// GetOrCreate returns the live session, replacing it with a fresh one when
// absent or expired.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID, employeeID string) (*State, error) {
	now := m.now()

	state, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state != nil && !state.Expired(now) {
		return state, nil
	}

	state = &State{
		SessionID:      sessionID,
		EmployeeID:     employeeID,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := m.store.Put(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// HandleUserMessage records the message and, when a live clarification is
// pending, tries to read the message as its answer. On success the stored
// partial intent comes back merged with the confirmed slot and its
// confidence lifted to ResolvedConfidence. On failure, or when the
// clarification has expired, the turn falls through to ordinary processing
// with any previously confirmed context available as defaults.
func (m *Manager) HandleUserMessage(ctx context.Context, sessionID, message string) (*Result, error) {
	now := m.now()

	state, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	state.appendHistory("user", message, now)
	state.LastActivityAt = now

	pending := state.PendingClarification
	if pending != nil && pending.Expired(now) {
		state.PendingClarification = nil
		pending = nil
	}

	if pending != nil {
		if merged, ok := m.resolveClarification(pending, message, now); ok {
			m.applyConfirmed(state, merged)
			state.PendingClarification = nil
			if err := m.store.Put(ctx, state); err != nil {
				return nil, err
			}
			m.logger.Info(logger.ModuleConversation, "clarification resolved", map[string]interface{}{
				"session_id": sessionID,
				"type":       pending.Type,
				"template":   merged.TemplateType,
				"period":     merged.Period,
			})
			return &Result{
				ShouldProcessAsRAG:    true,
				MergedIntent:          merged,
				ContextApplied:        true,
				ClarificationResolved: true,
			}, nil
		}
		// The reply did not answer the question; the conversation moved on.
		state.PendingClarification = nil
	}

	if err := m.store.Put(ctx, state); err != nil {
		return nil, err
	}
	return &Result{
		ShouldProcessAsRAG: true,
		ContextApplied:     !state.ConfirmedContext.Empty(),
	}, nil
}

func (m *Manager) resolveClarification(pending *PendingClarification, message string, now time.Time) (*intent.Intent, bool) {
	merged := &intent.Intent{}
	if pending.PartialIntent != nil {
		copied := *pending.PartialIntent
		merged = &copied
	}
	if merged.Type == "" {
		merged.Type = intent.TypeDataQuery
	}

	switch pending.Type {
	case clarify.TypeTemplate:
		selected, ok := ambiguity.ParseReply(message, pending.Options)
		if !ok {
			selected, ok = clarify.ParseTemplateReply(message)
		}
		if !ok {
			return nil, false
		}
		merged.TemplateType = selected
	case clarify.TypePeriod:
		period, ok := clarify.ParsePeriodReply(message, now)
		if !ok {
			return nil, false
		}
		merged.Period = period
	default:
		// Free-form clarifications carry no extractor; the follow-up is
		// processed as a fresh query.
		return nil, false
	}

	merged.Confidence = ResolvedConfidence
	return merged, true
}

// applyConfirmed folds the merged intent's settled slots into the session's
// confirmed context.
func (m *Manager) applyConfirmed(state *State, merged *intent.Intent) {
	if merged.TemplateType != "" {
		state.ConfirmedContext.TemplateType = merged.TemplateType
	}
	if merged.Period != "" {
		state.ConfirmedContext.Period = merged.Period
	}
	if merged.Company != "" {
		state.ConfirmedContext.Company = merged.Company
	}
	if merged.CalculationType != "" {
		state.ConfirmedContext.CalculationType = merged.CalculationType
	}
	if len(merged.Fields) > 0 {
		state.ConfirmedContext.Fields = append([]string(nil), merged.Fields...)
	}
}

// ApplyConfirmedContext fills empty slots of a freshly resolved intent from
// the session's confirmed context. Reports whether anything was applied.
func (m *Manager) ApplyConfirmedContext(state *State, in *intent.Intent) bool {
	if state == nil || in == nil {
		return false
	}
	applied := false
	if in.TemplateType == "" && state.ConfirmedContext.TemplateType != "" {
		in.TemplateType = state.ConfirmedContext.TemplateType
		applied = true
	}
	if in.Period == "" && state.ConfirmedContext.Period != "" {
		in.Period = state.ConfirmedContext.Period
		applied = true
	}
	if in.Company == "" && state.ConfirmedContext.Company != "" {
		in.Company = state.ConfirmedContext.Company
		applied = true
	}
	if in.CalculationType == "" && state.ConfirmedContext.CalculationType != "" {
		in.CalculationType = state.ConfirmedContext.CalculationType
		applied = true
	}
	if len(in.Fields) == 0 && len(state.ConfirmedContext.Fields) > 0 {
		in.Fields = append([]string(nil), state.ConfirmedContext.Fields...)
		applied = true
	}
	return applied
}

// SetPendingClarification stores the question just asked.
func (m *Manager) SetPendingClarification(ctx context.Context, sessionID string, pending *PendingClarification) error {
	now := m.now()

	state, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("session %s not found", sessionID)
	}

	if pending != nil && pending.CreatedAt.IsZero() {
		pending.CreatedAt = now
	}
	state.PendingClarification = pending
	state.LastActivityAt = now
	return m.store.Put(ctx, state)
}

// AddAssistantResponse appends the assistant's answer to the history.
func (m *Manager) AddAssistantResponse(ctx context.Context, sessionID, content string) error {
	now := m.now()

	state, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("session %s not found", sessionID)
	}

	state.appendHistory("assistant", content, now)
	state.LastActivityAt = now
	return m.store.Put(ctx, state)
}

// RecentHistory returns up to limit of the newest history entries.
func (m *Manager) RecentHistory(state *State, limit int) []HistoryEntry {
	if state == nil {
		return nil
	}
	if limit <= 0 || len(state.History) <= limit {
		return state.History
	}
	return state.History[len(state.History)-limit:]
}
