package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/config"
	"github.com/Bivtor/cold-cold-cold/internal/handler"
	middlewarepkg "github.com/Bivtor/cold-cold-cold/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Businesses *handler.BusinessesHandler
	Emails     *handler.EmailsHandler
	Notes      *handler.NotesHandler
	Scrape     *handler.ScrapeHandler
	Generate   *handler.GenerateHandler
	Analytics  *handler.AnalyticsHandler
	Templates  *handler.TemplatesHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.GET("/businesses", handlers.Businesses.List)
	e.POST("/businesses", handlers.Businesses.Create)
	e.GET("/businesses/:id", handlers.Businesses.Get)
	e.PUT("/businesses/:id", handlers.Businesses.Update)
	e.GET("/businesses/:id/contact-frequency", handlers.Businesses.ContactFrequency)

	e.GET("/emails", handlers.Emails.List)
	e.POST("/emails", handlers.Emails.Create)
	e.GET("/emails/:id", handlers.Emails.Get)
	e.PATCH("/emails/:id/status", handlers.Emails.UpdateStatus)
	e.DELETE("/emails/:id", handlers.Emails.Delete)
	e.POST("/emails/:id/send", handlers.Emails.Send)
	e.POST("/emails/:id/events", handlers.Analytics.RecordEvent)
	e.GET("/emails/:id/events", handlers.Analytics.ListEvents)

	e.GET("/notes", handlers.Notes.List)
	e.POST("/notes", handlers.Notes.Create)
	e.GET("/notes/:id", handlers.Notes.Get)
	e.PUT("/notes/:id", handlers.Notes.Update)
	e.DELETE("/notes/:id", handlers.Notes.Delete)

	e.POST("/scrape", handlers.Scrape.Collect, middlewarepkg.ScrapeRateLimiter(cfg.RateLimitScrape))

	e.POST("/generate-email", handlers.Generate.GenerateEmail)
	e.POST("/generate-subject", handlers.Generate.GenerateSubject)
	e.POST("/refine-email", handlers.Generate.RefineEmail)

	e.GET("/templates", handlers.Templates.List)
	e.POST("/templates/render", handlers.Templates.Render)

	e.GET("/analytics/overview", handlers.Analytics.Overview)
}
