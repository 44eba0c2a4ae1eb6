package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
	"github.com/Bivtor/cold-cold-cold/internal/repository"
)

var (
	errInvalidPayload = errors.New("invalid payload")
	errNoteFields     = errors.New("title and content are required")
)

// NotesHandler exposes the personal notes library endpoints.
type NotesHandler struct {
	notes repository.NotesRepository
}

// NewNotesHandler creates a new handler instance.
func NewNotesHandler(notes repository.NotesRepository) *NotesHandler {
	return &NotesHandler{notes: notes}
}

// List handles GET /notes requests.
func (h *NotesHandler) List(c echo.Context) error {
	filter := dto.ListFilter{
		Q:        strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Limit:    parseIntDefault(c.QueryParam("limit"), 20),
		Offset:   parseIntDefault(c.QueryParam("offset"), 0),
	}

	notes, err := h.notes.List(c.Request().Context(), filter)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "notes retrieved", notes)
}

// Get handles GET /notes/:id requests.
func (h *NotesHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid note id")
	}

	note, err := h.notes.GetByID(c.Request().Context(), id)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "note retrieved", note)
}

// Create handles POST /notes requests.
func (h *NotesHandler) Create(c echo.Context) error {
	note, err := noteFromRequest(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	if err := h.notes.Create(c.Request().Context(), note); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusCreated, "note created", note)
}

// Update handles PUT /notes/:id requests.
func (h *NotesHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid note id")
	}

	note, err := noteFromRequest(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}
	note.ID = id

	if err := h.notes.Update(c.Request().Context(), note); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "note updated", note)
}

// Delete handles DELETE /notes/:id requests.
func (h *NotesHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid note id")
	}

	if err := h.notes.Delete(c.Request().Context(), id); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "note deleted", nil)
}

func noteFromRequest(c echo.Context) (*entity.Note, error) {
	var req dto.NoteRequest
	if err := c.Bind(&req); err != nil {
		return nil, errInvalidPayload
	}
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, errNoteFields
	}

	note := &entity.Note{Title: title, Content: content}
	if category := strings.TrimSpace(req.Category); category != "" {
		note.Category = &category
	}
	return note, nil
}
