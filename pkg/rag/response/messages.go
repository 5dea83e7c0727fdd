// Package response holds the Korean user-facing message catalog.
package response

const (
	// FallbackApology is returned when intent resolution is unavailable.
	FallbackApology = "죄송합니다. 지금은 요청을 이해하지 못했어요. 잠시 후 다시 시도해 주시겠어요?"

	// NotFound is returned when retrieval produced nothing usable.
	NotFound = "요청하신 내역을 찾지 못했어요. 기간이나 항목을 바꿔서 다시 질문해 주시겠어요?"

	// ClarificationReprompt is returned when a clarification reply could
	// not be understood.
	ClarificationReprompt = "답변을 이해하지 못했어요. 번호나 항목 이름으로 선택해 주세요."

	// Greeting answers stage-0 greeting matches.
	Greeting = "안녕하세요! 수수료, 시책, 오버라이드 내역에 대해 무엇이든 물어보세요."

	// Thanks answers stage-0 gratitude matches.
	Thanks = "도움이 되었다니 다행이에요. 더 궁금한 내역이 있으면 말씀해 주세요."

	// Help answers stage-0 capability questions.
	Help = "저는 보상 내역 안내 챗봇이에요. 예를 들어 \"7월 수수료 얼마 받았어?\"처럼 물어보시면 본인 데이터에서 찾아 답해 드려요."
)
