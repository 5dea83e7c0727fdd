// Package conversation owns per-session chat state: history, confirmed
// context carried across turns, and pending clarifications awaiting a reply.
package conversation

import (
	"time"

	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/pkg/rag/intent"
)

const (
	// SessionTTL measures from last activity, not creation.
	SessionTTL = 30 * time.Minute

	// ClarificationTTL bounds how long an unanswered clarification stays
	// bindable. Checked at read time only.
	ClarificationTTL = 5 * time.Minute

	// HistoryLimit caps stored turns per session, oldest dropped first.
	HistoryLimit = 50

	// SweepInterval is how often expired sessions are collected. The sweep
	// is the only path that frees memory.
	SweepInterval = 10 * time.Minute

	// ResolvedConfidence replaces a low intent confidence once the user has
	// explicitly answered a clarification.
	ResolvedConfidence = 0.85
)

type HistoryEntry struct {
	Role      string    `json:"role"` // user or assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PendingClarification is a question the assistant asked and is still
// waiting on.
type PendingClarification struct {
	Type          string                       `json:"type"` // template, period, field, general
	Question      string                       `json:"question"`
	Options       []entity.ClarificationOption `json:"options,omitempty"`
	PartialIntent *intent.Intent               `json:"partial_intent,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
}

// Expired is inclusive: a check landing exactly on the deadline already
// treats the clarification as stale.
func (p *PendingClarification) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) >= ClarificationTTL
}

// ConfirmedContext holds slots the user has explicitly confirmed. Values are
// only ever added or overwritten with newer confirmations, never dropped
// within a session.
type ConfirmedContext struct {
	TemplateType    string   `json:"template_type,omitempty"`
	Period          string   `json:"period,omitempty"`
	Company         string   `json:"company,omitempty"`
	CalculationType string   `json:"calculation_type,omitempty"`
	Fields          []string `json:"fields,omitempty"`
}

func (c ConfirmedContext) Empty() bool {
	return c.TemplateType == "" && c.Period == "" && c.Company == "" &&
		c.CalculationType == "" && len(c.Fields) == 0
}

// State is one session's record.
type State struct {
	SessionID            string                `json:"session_id"`
	EmployeeID           string                `json:"employee_id"`
	History              []HistoryEntry        `json:"history"`
	PendingClarification *PendingClarification `json:"pending_clarification,omitempty"`
	ConfirmedContext     ConfirmedContext      `json:"confirmed_context"`
	CreatedAt            time.Time             `json:"created_at"`
	LastActivityAt       time.Time             `json:"last_activity_at"`
}

func (s *State) Expired(now time.Time) bool {
	return now.Sub(s.LastActivityAt) > SessionTTL
}

// clone deep-copies the state so callers and the store never share mutable
// memory. The sweep iterates store-owned copies while handlers mutate theirs.
func (s *State) clone() *State {
	c := *s
	if s.History != nil {
		c.History = append([]HistoryEntry(nil), s.History...)
	}
	if s.ConfirmedContext.Fields != nil {
		c.ConfirmedContext.Fields = append([]string(nil), s.ConfirmedContext.Fields...)
	}
	if s.PendingClarification != nil {
		p := *s.PendingClarification
		if p.Options != nil {
			p.Options = append([]entity.ClarificationOption(nil), p.Options...)
		}
		if p.PartialIntent != nil {
			pi := *p.PartialIntent
			if pi.Fields != nil {
				pi.Fields = append([]string(nil), pi.Fields...)
			}
			p.PartialIntent = &pi
		}
		c.PendingClarification = &p
	}
	return &c
}

func (s *State) appendHistory(role, content string, now time.Time) {
	s.History = append(s.History, HistoryEntry{Role: role, Content: content, Timestamp: now})
	if len(s.History) > HistoryLimit {
		s.History = s.History[len(s.History)-HistoryLimit:]
	}
}
