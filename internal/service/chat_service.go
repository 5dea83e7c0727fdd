package service

import (
	"context"
	"encoding/json"
	"time"

	"hof-chatbot-be/internal/dto"
	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/events"
	"hof-chatbot-be/pkg/rag/access"
	"hof-chatbot-be/pkg/rag/ambiguity"
	"hof-chatbot-be/pkg/rag/clarify"
	"hof-chatbot-be/pkg/rag/conversation"
	"hof-chatbot-be/pkg/rag/response"
	ragrouter "hof-chatbot-be/pkg/rag/router"
	"hof-chatbot-be/pkg/rag/search"
	"hof-chatbot-be/pkg/rag/template"
	"hof-chatbot-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IChatService interface {
	HandleMessage(ctx context.Context, employeeID string, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error)
	GetHistory(ctx context.Context, employeeID, sessionID string) ([]dto.ChatHistoryEntryDTO, error)
}

type chatService struct {
	router        *ragrouter.Router
	searcher      *search.Orchestrator
	detector      *ambiguity.Detector
	generator     *response.Generator
	conversations *conversation.Manager
	publisher     message.Publisher
	turnTopic     string
	logger        logger.ILogger
	now           func() time.Time
}

func NewChatService(
	router *ragrouter.Router,
	searcher *search.Orchestrator,
	detector *ambiguity.Detector,
	generator *response.Generator,
	conversations *conversation.Manager,
	publisher message.Publisher,
	turnTopic string,
	log logger.ILogger,
) IChatService {
	return &chatService{
		router:        router,
		searcher:      searcher,
		detector:      detector,
		generator:     generator,
		conversations: conversations,
		publisher:     publisher,
		turnTopic:     turnTopic,
		logger:        log,
		now:           time.Now,
	}
}

// HandleMessage runs one chat turn end to end. A security violation from the
// retrieval layer propagates as-is: the request dies, nothing is generated.
func (s *chatService) HandleMessage(ctx context.Context, employeeID string, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error) {
	start := s.now()

	decision, err := s.router.Route(ctx, req.SessionId, employeeID, req.Message)
	if err != nil {
		return nil, err
	}

	resp := &dto.ChatMessageResponse{
		SessionId:  req.SessionId,
		Route:      decision.Route,
		Confidence: decision.Confidence,
		CreatedAt:  start,
	}

	switch decision.Route {
	case ragrouter.RouteInstant, ragrouter.RouteFallback:
		resp.Answer = decision.Reply
	case ragrouter.RouteClarify:
		resp.Answer = decision.Reply
		resp.Clarification = clarificationDTO(decision.Clarification.Type, decision.Clarification.Question, decision.Clarification.Options)
	case ragrouter.RouteRAG:
		if err := s.answerWithRetrieval(ctx, employeeID, req, decision, resp); err != nil {
			return nil, err
		}
	}

	resp.LatencyMs = s.now().Sub(start).Milliseconds()
	s.publishTurn(employeeID, req, resp)
	return resp, nil
}

func (s *chatService) answerWithRetrieval(
	ctx context.Context,
	employeeID string,
	req *dto.ChatMessageRequest,
	decision *ragrouter.Decision,
	resp *dto.ChatMessageResponse,
) error {
	queryText := decision.Intent.Query
	if queryText == "" {
		queryText = req.Message
	}

	results, err := s.search(ctx, employeeID, queryText, decision.Intent.TemplateType, decision.Intent.Period)
	if err != nil {
		if access.IsSecurityViolation(err) {
			return err
		}
		s.logger.Error(logger.ModuleChat, "retrieval failed, degrading to apology", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		resp.Route = ragrouter.RouteFallback
		resp.Answer = response.FallbackApology
		return s.conversations.AddAssistantResponse(ctx, req.SessionId, resp.Answer)
	}

	// The result set can reveal ambiguity the intent model missed, but only
	// when the template slot is still open and this turn did not already
	// settle a clarification.
	if decision.Intent.TemplateType == "" && !decision.ClarificationResolved {
		if a := s.detector.Detect(ctx, queryText, results.Matches); a.NeedsClarification {
			return s.askClarification(ctx, req.SessionId, decision, a, resp)
		}
	}

	state, err := s.conversations.GetOrCreate(ctx, req.SessionId, employeeID)
	if err != nil {
		return err
	}
	history := providerHistory(s.conversations.RecentHistory(state, 10))

	resp.Answer = s.generator.Generate(ctx, queryText, results.Matches, history)
	resp.Sources = sourceDTOs(results.Matches)
	if err := s.conversations.AddAssistantResponse(ctx, req.SessionId, resp.Answer); err != nil {
		return err
	}
	return nil
}

func (s *chatService) search(ctx context.Context, employeeID, query, templateType, period string) (*search.Results, error) {
	namespaces := []string{access.NamespaceFor(employeeID), vectorstore.SharedNamespace}
	filter := access.OwnerFilter(employeeID)
	if period != "" {
		filter.Period = period
	}
	if templateType != "" {
		if def, ok := template.ByID(templateType); ok && len(def.DocTypes) > 0 {
			filter.DocType = def.DocTypes[0]
		}
	}
	return s.searcher.Search(ctx, query, namespaces, employeeID, filter)
}

func (s *chatService) askClarification(
	ctx context.Context,
	sessionID string,
	decision *ragrouter.Decision,
	a ambiguity.Assessment,
	resp *dto.ChatMessageResponse,
) error {
	err := s.conversations.SetPendingClarification(ctx, sessionID, &conversation.PendingClarification{
		Type:          clarify.TypeTemplate,
		Question:      a.Question,
		Options:       a.Options,
		PartialIntent: decision.Intent,
	})
	if err != nil {
		return err
	}
	if err := s.conversations.AddAssistantResponse(ctx, sessionID, a.Question); err != nil {
		return err
	}

	s.logger.Info(logger.ModuleAmbiguity, "post-retrieval clarification requested", map[string]interface{}{
		"session_id": sessionID,
		"reason":     a.Reason,
	})

	resp.Route = ragrouter.RouteClarify
	resp.Answer = a.Question
	resp.Clarification = clarificationDTO(clarify.TypeTemplate, a.Question, a.Options)
	return nil
}

func (s *chatService) publishTurn(employeeID string, req *dto.ChatMessageRequest, resp *dto.ChatMessageResponse) {
	event := events.NewChatTurnCompleted(
		req.SessionId,
		employeeID,
		resp.Route,
		req.Message,
		resp.Answer,
		resp.Confidence,
		resp.LatencyMs,
	)
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.publisher.Publish(s.turnTopic, msg); err != nil {
		s.logger.Warn(logger.ModuleChat, "failed to publish chat turn", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
	}
}

func (s *chatService) GetHistory(ctx context.Context, employeeID, sessionID string) ([]dto.ChatHistoryEntryDTO, error) {
	state, err := s.conversations.GetOrCreate(ctx, sessionID, employeeID)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.ChatHistoryEntryDTO, 0, len(state.History))
	for _, h := range state.History {
		entries = append(entries, dto.ChatHistoryEntryDTO{
			Role:      h.Role,
			Content:   h.Content,
			Timestamp: h.Timestamp,
		})
	}
	return entries, nil
}
