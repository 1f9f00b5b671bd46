package service

import (
	"context"
	"fmt"

	"amresponde/model"
	"amresponde/platform"
)

var logger = platform.Logger

const chatSystemPrompt = "Você é A&M Responde, uma assistente de IA inteligente, útil e amigável da A&M Produções. " +
	"Responda de forma clara, precisa e informativa. Sempre forneça respostas em português brasileiro, " +
	"a menos que especificamente solicitado em outro idioma. Seja prestativa e mantenha um tom profissional mas acessível."

const emptyResponseFallback = "Desculpe, não consegui gerar uma resposta no momento."

const (
	chatMaxTokens   = 1000
	chatTemperature = 0.7
)

// Completer is the single-shot completion surface of platform.LLMClient.
type Completer interface {
	Complete(ctx context.Context, messages []platform.ChatMessage, maxTokens int64, temperature float64) (string, error)
}

// ChatService orchestrates one authenticated ask: load history, call the
// model, persist the user/assistant pair.
type ChatService struct {
	llm Completer
}

func NewChatService(llm Completer) *ChatService {
	return &ChatService{llm: llm}
}

type AskResult struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// AskAI sends the fixed system prompt, the stored history in original order
// and the new user turn to the model. The pair is persisted only after the
// model responds; on upstream failure nothing is written and the caller must
// resend.
func (s *ChatService) AskAI(ctx context.Context, userID uint, conversationID, message string) (*AskResult, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	var history model.MessageList
	if conversationID != "" {
		conv, err := model.GetConversation(conversationID, userID)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, model.ErrNotFound
		}
		history = conv.Messages
	}

	messages := make([]platform.ChatMessage, 0, len(history)+2)
	messages = append(messages, platform.ChatMessage{Role: platform.RoleSystem, Content: chatSystemPrompt})
	for _, msg := range history {
		messages = append(messages, platform.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, platform.ChatMessage{Role: platform.RoleUser, Content: message})

	response, err := s.llm.Complete(ctx, messages, chatMaxTokens, chatTemperature)
	if err != nil {
		logger.Warnf("[chat] completion error: %s", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if response == "" {
		response = emptyResponseFallback
	}

	id, err := model.SaveConversationTurn(conversationID, userID, message, response)
	if err != nil {
		return nil, err
	}

	return &AskResult{Response: response, ConversationID: id}, nil
}
