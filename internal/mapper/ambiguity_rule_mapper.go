package mapper

import (
	"encoding/json"

	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/internal/model"

	"gorm.io/datatypes"
)

type AmbiguityRuleMapper struct{}

func NewAmbiguityRuleMapper() *AmbiguityRuleMapper {
	return &AmbiguityRuleMapper{}
}

func (m *AmbiguityRuleMapper) ToEntity(r *model.AmbiguityRule) *entity.AmbiguityRule {
	if r == nil {
		return nil
	}

	var keywords []string
	_ = json.Unmarshal(r.Keywords, &keywords)

	var templates []string
	_ = json.Unmarshal(r.CompetingTemplates, &templates)

	var options []entity.ClarificationOption
	if len(r.Options) > 0 {
		_ = json.Unmarshal(r.Options, &options)
	}

	return &entity.AmbiguityRule{
		Id:                    r.Id,
		Name:                  r.Name,
		Keywords:              keywords,
		CompetingTemplates:    templates,
		ClarificationQuestion: r.ClarificationQuestion,
		Options:               options,
		ScoreThreshold:        r.ScoreThreshold,
		Priority:              r.Priority,
		IsActive:              r.IsActive,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func (m *AmbiguityRuleMapper) ToModel(r *entity.AmbiguityRule) *model.AmbiguityRule {
	if r == nil {
		return nil
	}

	keywords, _ := json.Marshal(r.Keywords)
	templates, _ := json.Marshal(r.CompetingTemplates)
	options, _ := json.Marshal(r.Options)

	return &model.AmbiguityRule{
		Id:                    r.Id,
		Name:                  r.Name,
		Keywords:              datatypes.JSON(keywords),
		CompetingTemplates:    datatypes.JSON(templates),
		ClarificationQuestion: r.ClarificationQuestion,
		Options:               datatypes.JSON(options),
		ScoreThreshold:        r.ScoreThreshold,
		Priority:              r.Priority,
		IsActive:              r.IsActive,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}
