package controller

import (
	"net/http"

	"amresponde/service"

	"github.com/gin-gonic/gin"
)

type WidgetController struct {
	widgetService *service.WidgetService
}

func NewWidgetController(widgetService *service.WidgetService) *WidgetController {
	return &WidgetController{widgetService: widgetService}
}

func (ctrl *WidgetController) Ask(c *gin.Context) {
	var input struct {
		SessionID string `json:"session_id" binding:"required"`
		Message   string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	reply, err := ctrl.widgetService.Ask(c.Request.Context(), input.SessionID, input.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (ctrl *WidgetController) Conversation(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	messages, err := ctrl.widgetService.History(sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
