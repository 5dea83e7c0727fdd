package nats

import (
	"context"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/events"
	"hof-chatbot-be/pkg/rag/access"
)

// IncidentNotifier forwards security violations to the NATS bus so on-call
// tooling sees them even if the request log is lost.
type IncidentNotifier struct {
	publisher *Publisher
	logger    logger.ILogger
}

func NewIncidentNotifier(publisher *Publisher, log logger.ILogger) *IncidentNotifier {
	return &IncidentNotifier{publisher: publisher, logger: log}
}

func (n *IncidentNotifier) PublishSecurityIncident(ctx context.Context, violation *access.SecurityViolationError) {
	event := events.NewSecurityIncident(
		violation.Namespace,
		violation.ExpectedOwner,
		violation.ActualOwner,
		violation.MatchID,
	)
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Error(logger.ModuleSecurity, "failed to publish security incident", map[string]interface{}{
			"namespace": violation.Namespace,
			"error":     err.Error(),
		})
	}
}
