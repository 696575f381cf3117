package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/villageofwisdom/genius-backend/config"
	"github.com/villageofwisdom/genius-backend/internal/api/handlers"
	"github.com/villageofwisdom/genius-backend/internal/api/middleware"
	"github.com/villageofwisdom/genius-backend/internal/api/routes"
	"github.com/villageofwisdom/genius-backend/internal/cache"
	"github.com/villageofwisdom/genius-backend/internal/logger"
	"github.com/villageofwisdom/genius-backend/internal/providers/llm"
	mongorepo "github.com/villageofwisdom/genius-backend/internal/repositories/mongo"
	pgrepo "github.com/villageofwisdom/genius-backend/internal/repositories/postgres"
	"github.com/villageofwisdom/genius-backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	pg, err := config.NewPostgres()
	if err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	log.Info("PostgreSQL connected")

	mongoDB, err := config.NewMongo()
	if err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(mongoDB); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	log.Info("MongoDB connected")

	rdb, err := config.NewRedis()
	if err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	log.Info("Redis connected")

	ctx := context.Background()
	provider, err := llm.NewVertexGemini(ctx,
		os.Getenv("GOOGLE_CLOUD_PROJECT"),
		os.Getenv("VERTEX_LOCATION"),
		os.Getenv("VERTEX_MODEL"),
	)
	if err != nil {
		log.Fatalf("Vertex init error: %v", err)
	}
	defer provider.Close()

	users := services.NewUserService(pgrepo.NewUserRepo(pg))
	profiles := services.NewProfileService(pgrepo.NewProfileRepo(pg), cache.NewRedisCache(rdb))
	conversations := services.NewConversationService(mongorepo.NewConversationRepo(mongoDB))
	interviews := services.NewInterviewService(provider)
	locks := cache.NewRedisLocker(rdb)

	secret := []byte(jwtSecret)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:         handlers.NewAuthHandler(users, secret),
		Profile:      handlers.NewProfileHandler(profiles, conversations, users, log),
		Conversation: handlers.NewConversationHandler(conversations),
		WS:           handlers.NewWSHandler(conversations, profiles, interviews, locks, log, secret),
		JWTSecret:    secret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
