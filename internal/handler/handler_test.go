package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/database"
	"github.com/Bivtor/cold-cold-cold/internal/repository"
)

type testRepos struct {
	db         *sql.DB
	businesses *repository.SQLBusinessesRepository
	emails     *repository.SQLEmailsRepository
	notes      *repository.SQLNotesRepository
	events     *repository.SQLAnalyticsRepository
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return testRepos{
		db:         db,
		businesses: repository.NewBusinessesRepository(db),
		emails:     repository.NewEmailsRepository(db),
		notes:      repository.NewNotesRepository(db),
		events:     repository.NewAnalyticsRepository(db),
	}
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func getContext(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
