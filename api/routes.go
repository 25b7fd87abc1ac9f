package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailagent/api/handlers"
	"github.com/customeros/mailagent/api/middleware"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/services"
)

const AppSource = "mailagent-api"

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	apiHandlers := handlers.InitHandlers(s)

	r.GET("/health", handlers.HealthCheck)

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  middleware.APIKeyHeader,
		ValidAPIKey: apikey,
	})

	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.CustomContextMiddleware(AppSource))
	api.Use(middleware.TracingMiddleware())
	{
		emails := api.Group("/emails")
		{
			emails.GET("/today", apiHandlers.Emails.Today())
			emails.GET("/search", apiHandlers.Emails.Search())
			emails.POST("/compose", apiHandlers.Emails.Compose())
			emails.POST("/send", apiHandlers.Emails.Send())
		}

		api.POST("/commands", apiHandlers.Commands.Run())
		api.POST("/agent/chat", apiHandlers.Agent.Chat())
	}
}
