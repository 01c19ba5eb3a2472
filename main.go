package main

import (
	"log"
	"time"

	"TallyChat/middleware"
	"TallyChat/models"
	"TallyChat/pkg/cache"
	"TallyChat/pkg/chat"
	"TallyChat/pkg/config"
	svc "TallyChat/pkg/services"
	"TallyChat/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// config.Load happens in init of pkg/config

	// init DB (sqlite in same folder)
	db, err := gorm.Open(sqlite.Open("app.db"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// auto-migrate
	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}); err != nil {
		log.Fatalf("failed migrate: %v", err)
	}

	// apply runtime tunables
	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
	)
	middleware.SetDuplicateTTL(time.Duration(config.DuplicateWindowSeconds) * time.Second)
	cache.SetMaxItems(config.ConvListCacheMaxItems)

	// model gateway: real provider or offline local answers
	var gateway chat.ModelGateway
	if config.IsOpenAIEnabled {
		gateway = svc.NewOpenAIGateway(svc.GatewayConfig{
			APIKey:      config.OpenAIAPIKey,
			Model:       config.OpenAIModel,
			BaseURL:     config.OpenAIBaseURL,
			Temperature: config.OpenAITemperature,
		})
	} else {
		log.Printf("[main] OpenAI disabled via config, using local gateway")
		gateway = svc.NewLocalGateway()
	}

	service := chat.NewService(
		chat.NewGormAccountStore(db),
		chat.NewGormConversationStore(db),
		gateway,
		chat.Config{
			StartingAllotment: config.StartingTokenAllotment,
			PreflightEstimate: config.PreflightTokenEstimate,
		},
	)

	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, service)
	r.Run(":" + config.Port)
}
