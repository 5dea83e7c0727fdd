package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatLog is one completed chat turn, persisted asynchronously for audit.
type ChatLog struct {
	Id         uuid.UUID
	SessionId  string
	EmployeeId string
	Route      string // instant | rag | clarify | fallback
	Query      string
	Answer     string
	Confidence float64
	LatencyMs  int64
	CreatedAt  time.Time
}
