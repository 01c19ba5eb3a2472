package websocket

import (
	"TallyChat/controllers"
	"TallyChat/middleware"
	chatsvc "TallyChat/pkg/chat"

	"github.com/gin-gonic/gin"
)

func Register(r *gin.Engine, service *chatsvc.Service) {
	r.GET("/ws/chat", middleware.RateLimitByIP(), controllers.ChatWS(service))
}
