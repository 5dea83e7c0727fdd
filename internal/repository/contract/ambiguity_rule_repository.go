package contract

import (
	"context"

	"hof-chatbot-be/internal/entity"

	"github.com/google/uuid"
)

// IAmbiguityRuleRepository defines ambiguity rule repository operations
type IAmbiguityRuleRepository interface {
	FindActive(ctx context.Context) ([]*entity.AmbiguityRule, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.AmbiguityRule, error)
	Create(ctx context.Context, rule *entity.AmbiguityRule) error
	Update(ctx context.Context, rule *entity.AmbiguityRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}
