package chat

import (
	"context"

	"github.com/ethanbaker/api/pkg/api_key"
	"github.com/ethanbaker/essaychat/pkg/transcript"
	"github.com/gin-gonic/gin"
)

// Session is the conversation the routes operate on. Implemented by *chat.Controller
type Session interface {
	Dispatch(ctx context.Context, rawText string) (bool, <-chan struct{})
	Transcript() transcript.Reader
	Pending() bool
}

// Register routes for the chat module. When apiKey is not empty every route requires the X-API-KEY header
func RegisterRoutes(g *gin.RouterGroup, session Session, apiKey string) {
	ctrl := &controller{session: session}

	group := g.Group("/chat")
	if apiKey != "" {
		group.Use(api_key.APIKeyHeaderHandler(func(key string) bool {
			return key == apiKey
		}))
	}

	group.GET("/transcript", ctrl.GetTranscript) // Snapshot of turns and the pending flag
	group.POST("/messages", ctrl.PostMessage)    // Submit a user turn
	group.GET("/events", ctrl.StreamEvents)      // Server-sent transcript events
}
