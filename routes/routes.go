package routes

import (
	"net/http"

	"TallyChat/middleware"
	"TallyChat/pkg/chat"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authRoutes "TallyChat/routes/auth"
	chatRoutes "TallyChat/routes/chat"
	profileRoutes "TallyChat/routes/profile"
	websocketRoutes "TallyChat/routes/websocket"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, service *chat.Service) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "Token-metered chat backend running"})
	})

	websocketRoutes.Register(r, service)
	authRoutes.RegisterPublic(r, db)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected, db)
	profileRoutes.Register(protected, db)
	chatRoutes.Register(protected, service)
}
