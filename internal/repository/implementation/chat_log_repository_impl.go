package implementation

import (
	"context"

	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/internal/mapper"
	"hof-chatbot-be/internal/model"
	"hof-chatbot-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type chatLogRepository struct {
	db     *gorm.DB
	mapper *mapper.ChatLogMapper
}

// NewChatLogRepository creates a new chat log repository
func NewChatLogRepository(db *gorm.DB) contract.IChatLogRepository {
	return &chatLogRepository{db: db, mapper: mapper.NewChatLogMapper()}
}

func (r *chatLogRepository) Create(ctx context.Context, log *entity.ChatLog) error {
	if log.Id == uuid.Nil {
		log.Id = uuid.New()
	}
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	log.Id = m.Id
	return nil
}

func (r *chatLogRepository) FindBySessionId(ctx context.Context, sessionId string, limit int) ([]*entity.ChatLog, error) {
	var models []model.ChatLog
	query := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.ChatLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(&m)
	}
	return entities, nil
}
