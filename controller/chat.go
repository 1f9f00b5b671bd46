package controller

import (
	"errors"
	"net/http"

	"amresponde/model"
	"amresponde/service"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	chatService *service.ChatService
}

func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// currentUserID reads the identity set by the token middleware.
func currentUserID(c *gin.Context) uint {
	return uint(c.GetInt64("UserId"))
}

// respondServiceError maps the typed error kinds onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	requestId := c.GetString("requestId")
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		logger.Warnf("[%s] unauthenticated request", requestId)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Por favor, faça login primeiro"})
	case errors.Is(err, model.ErrNotFound):
		logger.Warnf("[%s] conversation not found or not owned", requestId)
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversa não encontrada ou sem permissão"})
	case errors.Is(err, service.ErrUpstream):
		logger.Warnf("[%s] upstream generation failed: %s", requestId, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erro ao processar sua pergunta. Tente novamente em alguns instantes."})
	default:
		logger.Warnf("[%s] internal error: %s", requestId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno. Tente novamente."})
	}
}

func (ctrl *ChatController) Ask(c *gin.Context) {
	var input struct {
		Message        string `json:"message" binding:"required"`
		ConversationID string `json:"conversation_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	result, err := ctrl.chatService.AskAI(c.Request.Context(), currentUserID(c), input.ConversationID, input.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ctrl *ChatController) List(c *gin.Context) {
	convs, err := model.ListConversations(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

func (ctrl *ChatController) Get(c *gin.Context) {
	conv, err := model.GetConversation(c.Param("id"), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if conv == nil {
		respondServiceError(c, model.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (ctrl *ChatController) Delete(c *gin.Context) {
	if err := model.DeleteConversation(c.Param("id"), currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversa excluída"})
}
