package entity

import (
	"time"

	"github.com/google/uuid"
)

// ClarificationOption is one selectable answer offered with a clarification
// question.
type ClarificationOption struct {
	Value       string `json:"value"` // canonical template identifier
	Label       string `json:"label"` // Korean display label
	Description string `json:"description,omitempty"`
}

// AmbiguityRule is admin-configured: when its keywords appear in a query, the
// listed templates compete and the pre-authored clarification applies.
// Immutable once loaded; refreshed from the backing store on a cache TTL.
type AmbiguityRule struct {
	Id                    uuid.UUID
	Name                  string
	Keywords              []string
	CompetingTemplates    []string
	ClarificationQuestion string
	Options               []ClarificationOption
	ScoreThreshold        float64 // distribution signal: ambiguous when ratio >= 1 - threshold
	Priority              int     // highest priority wins when several rules match
	IsActive              bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
