package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"amresponde/controller"
	"amresponde/model"
	"amresponde/platform"
	"amresponde/service"

	_uuid "github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CORSMiddleware ...
// CORS (Cross-Origin Resource Sharing)
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Origin, Authorization, Accept, Client-Security-Token, Accept-Encoding, x-access-token")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
		} else {
			c.Next()
		}
	}
}

// RequestIDMiddleware ...
// Generate a unique ID and attach it to each request for future reference or use
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := _uuid.New()
		c.Writer.Header().Set("X-Request-Id", uuid.String())
		c.Set("requestId", uuid.String())
		c.Next()
	}
}

func LogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		if raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		userAgent := c.Request.UserAgent()
		requestId := c.GetString("requestId")

		logrus.Infof(
			" [%s] %d | %v | %s | %s | %s | %s ",
			requestId,
			status,
			latency,
			clientIP,
			method,
			path,
			userAgent,
		)
	}
}

var auth = new(controller.AuthController)

// TokenAuthMiddleware ...
// JWT Authentication middleware attached to each request that needs to be authenticated to
// validate the access_token in the header
func TokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.TokenValid(c)
		c.Next()
	}
}

// widgetRetention reads the anonymous-session retention window from env,
// defaulting to 30 days.
func widgetRetention() time.Duration {
	days, err := strconv.Atoi(os.Getenv("WIDGET_RETENTION_DAYS"))
	if err != nil || days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

func main() {
	fmt.Println("Server started...")

	//Load the .env file
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("failed to load the env file")
	}

	platform.InitFile("./log", "gin")

	r := gin.Default()
	r.Use(CORSMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LogMiddleware())

	//init database
	platform.InitDB()
	model.InstallDB()

	llmClient := platform.NewLLMClient()
	chatService := service.NewChatService(llmClient)
	widgetService := service.NewWidgetService(llmClient)

	v1 := r.Group("/v1")
	{
		user := new(controller.UserController)
		v1.POST("/user/register", user.Register)
		v1.POST("/user/login", user.Login)

		//Refresh the token
		v1.POST("/token/refresh", auth.Refresh)

		// Authenticated chat
		chat := controller.NewChatController(chatService)
		v1.POST("/chat/ask", TokenAuthMiddleware(), chat.Ask)
		v1.GET("/chat/conversations", TokenAuthMiddleware(), chat.List)
		v1.GET("/chat/conversations/:id", TokenAuthMiddleware(), chat.Get)
		v1.DELETE("/chat/conversations/:id", TokenAuthMiddleware(), chat.Delete)

		// Anonymous widget chat
		widget := controller.NewWidgetController(widgetService)
		v1.POST("/widget/ask", widget.Ask)
		v1.GET("/widget/conversation", widget.Conversation)
	}

	c := cron.New()
	c.AddFunc("0 4 * * *", func() {
		purged, err := model.PurgeStaleWidgetConversations(widgetRetention())
		if err != nil {
			platform.Logger.Warnf("[retention] purge failed: %s", err)
			return
		}
		platform.Logger.Infof("[retention] purged %d stale widget conversations", purged)
	})
	c.Start()

	port := os.Getenv("PORT")
	r.Run(":" + port)
}
