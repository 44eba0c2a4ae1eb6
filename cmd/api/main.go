package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/Bivtor/cold-cold-cold/internal/config"
	"github.com/Bivtor/cold-cold-cold/internal/database"
	"github.com/Bivtor/cold-cold-cold/internal/generator"
	"github.com/Bivtor/cold-cold-cold/internal/handler"
	"github.com/Bivtor/cold-cold-cold/internal/mailer"
	middlewarepkg "github.com/Bivtor/cold-cold-cold/internal/middleware"
	"github.com/Bivtor/cold-cold-cold/internal/repository"
	"github.com/Bivtor/cold-cold-cold/internal/router"
	"github.com/Bivtor/cold-cold-cold/internal/scraper"
	"github.com/Bivtor/cold-cold-cold/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	businessesRepo := repository.NewBusinessesRepository(db)
	emailsRepo := repository.NewEmailsRepository(db)
	notesRepo := repository.NewNotesRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	siteScraper := scraper.New(nil, cfg.ScrapeTimeout)
	defer siteScraper.Close()

	collectService := service.NewBusinessDataService(siteScraper, businessesRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	llmClient := generator.New(cfg.LLM, nil)
	mailSender := mailer.New(cfg.Mail, nil)

	handlers := router.Handlers{
		Businesses: handler.NewBusinessesHandler(businessesRepo, emailsRepo),
		Emails:     handler.NewEmailsHandler(emailsRepo, businessesRepo, mailSender),
		Notes:      handler.NewNotesHandler(notesRepo),
		Scrape:     handler.NewScrapeHandler(collectService),
		Generate:   handler.NewGenerateHandler(llmClient),
		Analytics:  handler.NewAnalyticsHandler(analyticsService, analyticsRepo, emailsRepo),
		Templates:  handler.NewTemplatesHandler(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()
	log.Printf("listening on :%s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
