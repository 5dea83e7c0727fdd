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

type ambiguityRuleRepository struct {
	db     *gorm.DB
	mapper *mapper.AmbiguityRuleMapper
}

// NewAmbiguityRuleRepository creates a new ambiguity rule repository
func NewAmbiguityRuleRepository(db *gorm.DB) contract.IAmbiguityRuleRepository {
	return &ambiguityRuleRepository{db: db, mapper: mapper.NewAmbiguityRuleMapper()}
}

func (r *ambiguityRuleRepository) FindActive(ctx context.Context) ([]*entity.AmbiguityRule, error) {
	var models []model.AmbiguityRule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority DESC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.AmbiguityRule, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(&m)
	}
	return entities, nil
}

func (r *ambiguityRuleRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.AmbiguityRule, error) {
	var m model.AmbiguityRule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ambiguityRuleRepository) Create(ctx context.Context, rule *entity.AmbiguityRule) error {
	if rule.Id == uuid.Nil {
		rule.Id = uuid.New()
	}
	m := r.mapper.ToModel(rule)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	rule.Id = m.Id
	return nil
}

func (r *ambiguityRuleRepository) Update(ctx context.Context, rule *entity.AmbiguityRule) error {
	m := r.mapper.ToModel(rule)
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *ambiguityRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.AmbiguityRule{}, "id = ?", id).Error
}
