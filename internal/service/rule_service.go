package service

import (
	"context"

	"hof-chatbot-be/internal/dto"
	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/internal/repository/contract"
	"hof-chatbot-be/pkg/rag/ambiguity"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRuleService interface {
	List(ctx context.Context) ([]dto.AmbiguityRuleResponse, error)
	Create(ctx context.Context, req *dto.AmbiguityRuleRequest) (*dto.AmbiguityRuleResponse, error)
	Update(ctx context.Context, id string, req *dto.AmbiguityRuleRequest) (*dto.AmbiguityRuleResponse, error)
	Delete(ctx context.Context, id string) error
	Reload()
}

// ruleService administers ambiguity rules. Every mutation invalidates the
// detector's rule cache so changes take effect within a request, not a TTL.
type ruleService struct {
	rules    contract.IAmbiguityRuleRepository
	detector *ambiguity.Detector
	logger   logger.ILogger
}

func NewRuleService(rules contract.IAmbiguityRuleRepository, detector *ambiguity.Detector, log logger.ILogger) IRuleService {
	return &ruleService{rules: rules, detector: detector, logger: log}
}

// Reload drops the detector's rule cache so the next turn reads fresh rules.
// Used after out-of-band edits to the ambiguity_rules table.
func (s *ruleService) Reload() {
	s.detector.InvalidateRules()
	s.logger.Info(logger.ModuleAmbiguity, "ambiguity rule cache reloaded", nil)
}

func (s *ruleService) List(ctx context.Context) ([]dto.AmbiguityRuleResponse, error) {
	rules, err := s.rules.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AmbiguityRuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleResponse(r))
	}
	return out, nil
}

func (s *ruleService) Create(ctx context.Context, req *dto.AmbiguityRuleRequest) (*dto.AmbiguityRuleResponse, error) {
	rule := ruleFromRequest(req)
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.detector.InvalidateRules()

	s.logger.Info(logger.ModuleAmbiguity, "ambiguity rule created", map[string]interface{}{
		"rule_id": rule.Id.String(),
		"name":    rule.Name,
	})

	resp := ruleResponse(rule)
	return &resp, nil
}

func (s *ruleService) Update(ctx context.Context, id string, req *dto.AmbiguityRuleRequest) (*dto.AmbiguityRuleResponse, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid rule id")
	}

	existing, err := s.rules.FindById(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "rule not found")
	}

	rule := ruleFromRequest(req)
	rule.Id = ruleID
	rule.CreatedAt = existing.CreatedAt
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.detector.InvalidateRules()

	resp := ruleResponse(rule)
	return &resp, nil
}

func (s *ruleService) Delete(ctx context.Context, id string) error {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid rule id")
	}
	if err := s.rules.Delete(ctx, ruleID); err != nil {
		return err
	}
	s.detector.InvalidateRules()
	return nil
}

func ruleFromRequest(req *dto.AmbiguityRuleRequest) *entity.AmbiguityRule {
	options := make([]entity.ClarificationOption, 0, len(req.Options))
	for _, o := range req.Options {
		options = append(options, entity.ClarificationOption{
			Value:       o.Value,
			Label:       o.Label,
			Description: o.Description,
		})
	}
	return &entity.AmbiguityRule{
		Name:                  req.Name,
		Keywords:              req.Keywords,
		CompetingTemplates:    req.CompetingTemplates,
		ClarificationQuestion: req.ClarificationQuestion,
		Options:               options,
		ScoreThreshold:        req.ScoreThreshold,
		Priority:              req.Priority,
		IsActive:              req.IsActive,
	}
}

func ruleResponse(r *entity.AmbiguityRule) dto.AmbiguityRuleResponse {
	options := make([]dto.ClarificationOptionDTO, 0, len(r.Options))
	for _, o := range r.Options {
		options = append(options, dto.ClarificationOptionDTO{
			Value:       o.Value,
			Label:       o.Label,
			Description: o.Description,
		})
	}
	return dto.AmbiguityRuleResponse{
		Id:                    r.Id.String(),
		Name:                  r.Name,
		Keywords:              r.Keywords,
		CompetingTemplates:    r.CompetingTemplates,
		ClarificationQuestion: r.ClarificationQuestion,
		Options:               options,
		ScoreThreshold:        r.ScoreThreshold,
		Priority:              r.Priority,
		IsActive:              r.IsActive,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}
