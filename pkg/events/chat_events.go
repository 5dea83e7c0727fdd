package events

import "time"

// Event type codes carried on the bus.
const (
	TypeChatTurnCompleted = "CHAT_TURN_COMPLETED"
	TypeSecurityIncident  = "SECURITY_INCIDENT"
)

// NewChatTurnCompleted records one finished chat turn for async persistence
// and analytics.
func NewChatTurnCompleted(sessionID, employeeID, route, query, answer string, confidence float64, latencyMs int64) Event {
	return BaseEvent{
		Type: TypeChatTurnCompleted,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"employee_id": employeeID,
			"route":       route,
			"query":       query,
			"answer":      answer,
			"confidence":  confidence,
			"latency_ms":  latencyMs,
		},
		OccurredAt: time.Now(),
	}
}

// NewSecurityIncident reports a namespace ownership violation. These are
// critical: they indicate either an ingestion bug or an attempted cross-
// tenant read.
func NewSecurityIncident(namespace, expectedOwner, actualOwner, matchID string) Event {
	return BaseEvent{
		Type: TypeSecurityIncident,
		Data: map[string]interface{}{
			"namespace":      namespace,
			"expected_owner": expectedOwner,
			"actual_owner":   actualOwner,
			"match_id":       matchID,
		},
		OccurredAt: time.Now(),
	}
}
