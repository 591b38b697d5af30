package server

import (
	"github.com/labstack/echo/v4"

	"github.com/codelore/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Repository routes
	apiRoutes.GET("/repositories", routes.GetRepositoriesHandler)
	apiRoutes.POST("/repositories", routes.CreateRepositoryHandler)
	apiRoutes.GET("/repositories/:id", routes.GetRepositoryHandler)
	apiRoutes.GET("/repositories/:id/status", routes.GetRepositoryStatusHandler)
	apiRoutes.DELETE("/repositories/:id", routes.DeleteRepositoryHandler)

	// Analysis routes
	apiRoutes.GET("/repositories/:id/insights", routes.GetInsightsHandler)

	// Chat routes
	apiRoutes.POST("/repositories/:id/chat", routes.ChatHandler)
	apiRoutes.GET("/repositories/:id/chat", routes.GetChatHistoryHandler)
}
