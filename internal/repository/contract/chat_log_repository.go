package contract

import (
	"context"

	"hof-chatbot-be/internal/entity"
)

// IChatLogRepository defines chat log repository operations
type IChatLogRepository interface {
	Create(ctx context.Context, log *entity.ChatLog) error
	FindBySessionId(ctx context.Context, sessionId string, limit int) ([]*entity.ChatLog, error)
}
