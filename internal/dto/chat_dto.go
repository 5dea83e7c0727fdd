package dto

import "time"

type ChatMessageRequest struct {
	SessionId string `json:"session_id" validate:"required,max=100"`
	Message   string `json:"message" validate:"required,max=2000"`
}

type ClarificationOptionDTO struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type ClarificationDTO struct {
	Type     string                   `json:"type"`
	Question string                   `json:"question"`
	Options  []ClarificationOptionDTO `json:"options,omitempty"`
}

type SourceDTO struct {
	DocType string `json:"doc_type"`
	Period  string `json:"period,omitempty"`
	Company string `json:"company,omitempty"`
}

type ChatMessageResponse struct {
	SessionId     string            `json:"session_id"`
	Route         string            `json:"route"` // instant | rag | clarify | fallback
	Answer        string            `json:"answer"`
	Confidence    float64           `json:"confidence"`
	Clarification *ClarificationDTO `json:"clarification,omitempty"`
	Sources       []SourceDTO       `json:"sources,omitempty"`
	LatencyMs     int64             `json:"latency_ms"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ChatTurnMessage is the async event payload persisted by the consumer.
type ChatTurnMessage struct {
	SessionId  string  `json:"session_id"`
	EmployeeId string  `json:"employee_id"`
	Route      string  `json:"route"`
	Query      string  `json:"query"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	LatencyMs  int64   `json:"latency_ms"`
}

type ChatHistoryEntryDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type AmbiguityRuleRequest struct {
	Name                  string                   `json:"name" validate:"required,max=200"`
	Keywords              []string                 `json:"keywords" validate:"required,min=1"`
	CompetingTemplates    []string                 `json:"competing_templates" validate:"required,min=2"`
	ClarificationQuestion string                   `json:"clarification_question" validate:"required"`
	Options               []ClarificationOptionDTO `json:"options,omitempty"`
	ScoreThreshold        float64                  `json:"score_threshold" validate:"gte=0,lte=1"`
	Priority              int                      `json:"priority"`
	IsActive              bool                     `json:"is_active"`
}

type AmbiguityRuleResponse struct {
	Id                    string                   `json:"id"`
	Name                  string                   `json:"name"`
	Keywords              []string                 `json:"keywords"`
	CompetingTemplates    []string                 `json:"competing_templates"`
	ClarificationQuestion string                   `json:"clarification_question"`
	Options               []ClarificationOptionDTO `json:"options,omitempty"`
	ScoreThreshold        float64                  `json:"score_threshold"`
	Priority              int                      `json:"priority"`
	IsActive              bool                     `json:"is_active"`
	CreatedAt             time.Time                `json:"created_at"`
	UpdatedAt             time.Time                `json:"updated_at"`
}
