package mapper

import (
	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/internal/model"
)

type ChatLogMapper struct{}

func NewChatLogMapper() *ChatLogMapper {
	return &ChatLogMapper{}
}

func (m *ChatLogMapper) ToEntity(l *model.ChatLog) *entity.ChatLog {
	if l == nil {
		return nil
	}
	return &entity.ChatLog{
		Id:         l.Id,
		SessionId:  l.SessionId,
		EmployeeId: l.EmployeeId,
		Route:      l.Route,
		Query:      l.Query,
		Answer:     l.Answer,
		Confidence: l.Confidence,
		LatencyMs:  l.LatencyMs,
		CreatedAt:  l.CreatedAt,
	}
}

func (m *ChatLogMapper) ToModel(l *entity.ChatLog) *model.ChatLog {
	if l == nil {
		return nil
	}
	return &model.ChatLog{
		Id:         l.Id,
		SessionId:  l.SessionId,
		EmployeeId: l.EmployeeId,
		Route:      l.Route,
		Query:      l.Query,
		Answer:     l.Answer,
		Confidence: l.Confidence,
		LatencyMs:  l.LatencyMs,
		CreatedAt:  l.CreatedAt,
	}
}
