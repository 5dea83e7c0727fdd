package service

import (
	"context"
	"encoding/json"

	"hof-chatbot-be/internal/dto"
	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains chat-turn events off the in-process bus and writes
// them to the chat_logs table, keeping persistence off the request path.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	chatLogs  contract.IChatLogRepository
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	chatLogs contract.IChatLogRepository,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		chatLogs:  chatLogs,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ChatTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Warn(logger.ModuleChat, "dropping malformed chat turn message", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack malformed messages to prevent infinite retry.
		msg.Ack()
		return
	}

	log := &entity.ChatLog{
		SessionId:  payload.SessionId,
		EmployeeId: payload.EmployeeId,
		Route:      payload.Route,
		Query:      payload.Query,
		Answer:     payload.Answer,
		Confidence: payload.Confidence,
		LatencyMs:  payload.LatencyMs,
	}
	if err := cs.chatLogs.Create(ctx, log); err != nil {
		cs.logger.Error(logger.ModuleChat, "failed to persist chat log", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
