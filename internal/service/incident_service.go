package service

import (
	"context"
	"fmt"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/events"
	pktNats "hof-chatbot-be/pkg/nats"
)

type IIncidentService interface {
	Start() error
}

// incidentService listens for security incidents on NATS and surfaces them
// in the logs. Incidents are published by the retrieval layer whenever a
// record with a foreign owner shows up in a private namespace.
type incidentService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewIncidentService(subscriber *pktNats.Subscriber, log logger.ILogger) IIncidentService {
	return &incidentService{
		subscriber: subscriber,
		logger:     log,
	}
}

func (is *incidentService) Start() error {
	subject := fmt.Sprintf("events.%s", events.TypeSecurityIncident)

	return is.subscriber.Subscribe(subject, "chat-security-incidents", func(ctx context.Context, event events.Event) error {
		payload := event.Payload()
		is.logger.Error(logger.ModuleSecurity, "Security incident received", map[string]interface{}{
			"namespace":      payload["namespace"],
			"expected_owner": payload["expected_owner"],
			"actual_owner":   payload["actual_owner"],
			"match_id":       payload["match_id"],
		})
		return nil
	})
}
