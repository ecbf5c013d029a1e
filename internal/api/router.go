package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openlum/landreport-backend-go/internal/config"
	"github.com/openlum/landreport-backend-go/internal/handler"
	"github.com/openlum/landreport-backend-go/internal/middleware"
)

// SetupRouter wires the HTTP routes
func SetupRouter(cfg *config.Config, reports *handler.ReportHandler, auth *handler.AuthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Land Report API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(120, time.Minute))
	{
		api.POST("/auth/token", auth.Token)

		// Read endpoints
		api.GET("/reports", reports.ListReports)
		api.GET("/reports/:id", reports.GetReport)
		api.GET("/reports/:id/values", reports.GetReportValues)

		// Generation endpoints mutate the report store
		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.POST("/reports/land", reports.GenerateLand)
			protected.POST("/reports/nitrogen-surplus", reports.GenerateNitrogenSurplus)
		}
	}

	return r
}
