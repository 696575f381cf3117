package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/villageofwisdom/genius-backend/internal/api/handlers"
	"github.com/villageofwisdom/genius-backend/internal/api/middleware"
)

type Deps struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Conversation *handlers.ConversationHandler
	WS           *handlers.WSHandler
	JWTSecret    []byte
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/api/auth/signup", d.Auth.Signup)
	r.POST("/api/auth/login", d.Auth.Login)

	// Protected routes (JWT)
	auth := r.Group("/api")
	auth.Use(middleware.JWTAuth(d.JWTSecret))

	auth.POST("/profiles", d.Profile.Create)
	auth.GET("/profiles", d.Profile.List)
	auth.GET("/profiles/:id", d.Profile.Get)

	auth.GET("/conversations/:id", d.Conversation.Get)

	// WebSocket: authentication happens in-channel via the join message
	r.GET("/ws", d.WS.Connect)
}
