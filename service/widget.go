package service

import (
	"context"
	"regexp"
	"time"

	"amresponde/model"
	"amresponde/platform"

	"github.com/google/uuid"
)

const widgetSystemPrompt = "Você é A&M Responde, uma IA assistente amigável e prestativa. " +
	"Responda de forma clara, útil e conversacional. Você pode ajudar com diversas tarefas " +
	"e responder perguntas sobre vários tópicos."

const (
	widgetMaxTokens   = 500
	widgetTemperature = 1.0
)

const imageStubReply = "🎨 Gerando imagem... (Funcionalidade em desenvolvimento)\n\n" +
	"Por enquanto, posso ajudar com conversas de texto. Em breve terei a capacidade de gerar imagens reais!"

const videoStubReply = "🎬 Gerando vídeo... (Funcionalidade em desenvolvimento)\n\n" +
	"Por enquanto, posso ajudar com conversas de texto. Em breve terei a capacidade de gerar vídeos!"

const widgetErrorReply = "Desculpe, ocorreu um erro ao processar sua mensagem. Tente novamente."

const widgetEmptyReply = "Desculpe, não consegui processar sua mensagem."

// Fixed Portuguese intent patterns: a generation verb close to a media noun.
// Image is checked before video, matching the product's original precedence.
var (
	imageRequestPattern = regexp.MustCompile(`(?i)(ger[ae]|cri[ae]|fa[zç]|produz).{0,40}(imagem|imagens|foto|figura|desenho|ilustra)|desenh[ae]|ilustr`)
	videoRequestPattern = regexp.MustCompile(`(?i)(ger[ae]|cri[ae]|fa[zç]|produz).{0,40}(v[íi]deo|filme|anima)`)
)

// classifyIntent tags a widget message as text, image or video. Image and
// video are product stubs: they short-circuit the model call entirely.
func classifyIntent(text string) string {
	if imageRequestPattern.MatchString(text) {
		return model.TypeImage
	}
	if videoRequestPattern.MatchString(text) {
		return model.TypeVideo
	}
	return model.TypeText
}

// WidgetService drives the anonymous chat surface. The user turn is
// persisted before the model is consulted, so it survives upstream failure.
type WidgetService struct {
	llm Completer
}

func NewWidgetService(llm Completer) *WidgetService {
	return &WidgetService{llm: llm}
}

// Ask stores the user message, generates a reply (canned stub or single-turn
// completion, no history) and stores that too. Upstream failure is absorbed
// into a canned fallback reply, never surfaced as an error.
func (s *WidgetService) Ask(ctx context.Context, sessionID, message string) (*model.WidgetMessage, error) {
	userMsg := model.WidgetMessage{
		ID:        uuid.NewString(),
		Role:      model.RoleUser,
		Content:   message,
		Type:      model.TypeText,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := model.AppendWidgetMessage(sessionID, userMsg); err != nil {
		return nil, err
	}

	reply := s.generateReply(ctx, message)
	if err := model.AppendWidgetMessage(sessionID, reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// History returns the session's transcript, empty when the session is new.
func (s *WidgetService) History(sessionID string) ([]model.WidgetMessage, error) {
	conv, err := model.GetWidgetConversation(sessionID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return []model.WidgetMessage{}, nil
	}
	return conv.Messages, nil
}

func (s *WidgetService) generateReply(ctx context.Context, message string) model.WidgetMessage {
	var content string
	msgType := classifyIntent(message)

	switch msgType {
	case model.TypeImage:
		content = imageStubReply
	case model.TypeVideo:
		content = videoStubReply
	default:
		response, err := s.llm.Complete(ctx, []platform.ChatMessage{
			{Role: platform.RoleSystem, Content: widgetSystemPrompt},
			{Role: platform.RoleUser, Content: message},
		}, widgetMaxTokens, widgetTemperature)
		switch {
		case err != nil:
			logger.Warnf("[widget] completion error: %s", err)
			content = widgetErrorReply
		case response == "":
			content = widgetEmptyReply
		default:
			content = response
		}
	}

	return model.WidgetMessage{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   content,
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
	}
}
