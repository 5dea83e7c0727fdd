package service

import (
	"hof-chatbot-be/internal/dto"
	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/pkg/llm"
	"hof-chatbot-be/pkg/rag/conversation"
	"hof-chatbot-be/pkg/vectorstore"
)

func clarificationDTO(clarType, question string, options []entity.ClarificationOption) *dto.ClarificationDTO {
	out := &dto.ClarificationDTO{Type: clarType, Question: question}
	for _, o := range options {
		out.Options = append(out.Options, dto.ClarificationOptionDTO{
			Value:       o.Value,
			Label:       o.Label,
			Description: o.Description,
		})
	}
	return out
}

func sourceDTOs(matches []vectorstore.Match) []dto.SourceDTO {
	sources := make([]dto.SourceDTO, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, dto.SourceDTO{
			DocType: m.Metadata.DocType,
			Period:  m.Metadata.Period,
			Company: m.Metadata.Company,
		})
	}
	return sources
}

func providerHistory(entries []conversation.HistoryEntry) []llm.Message {
	if len(entries) == 0 {
		return nil
	}
	messages := make([]llm.Message, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, llm.Message{Role: e.Role, Content: e.Content})
	}
	return messages
}
