package chat

import (
	"TallyChat/controllers"
	"TallyChat/middleware"
	chatsvc "TallyChat/pkg/chat"

	"github.com/gin-gonic/gin"
)

// Register registers chat routes (protected)
func Register(g *gin.RouterGroup, service *chatsvc.Service) {
	// Rate limiting only on the metered send endpoint
	g.POST("/chat", middleware.RateLimit(), controllers.SendMessage(service))
	g.GET("/chat", controllers.ListConversations(service))
	g.GET("/chat/:conversation_id", controllers.GetConversationHistory(service))
	g.DELETE("/chat/:conversation_id", controllers.DeleteConversation(service))
	// Delete all conversations for current user
	g.DELETE("/chat", controllers.DeleteAllConversations(service))
}
