package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/openldn/inbox/internal/handlers"
	"github.com/openldn/inbox/internal/middleware"
	"github.com/openldn/inbox/internal/repositories"
	"github.com/openldn/inbox/pkg/config"
)

// SetupMiddleware configures global Echo middleware. CORS is permissive:
// the inbox accepts notifications from any origin.
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, messageRepo repositories.MessageRepository, cfg *config.Config) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"message": "Linked Data Notifications inbox"})
	})

	messageHandler := handlers.NewMessageHandler(messageRepo, cfg.IDRoot)
	messageHandler.RegisterMessageRoutes(e, middleware.RateLimiter(messageRepo))
	log.Println("Inbox routes configured.")
}
