package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
)

// ErrNoteNotFound indicates there is no row for the given note id.
var ErrNoteNotFound = errors.New("note not found")

// NotesRepository describes persistence operations for prompt-library notes.
type NotesRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Note, error)
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Note, error)
}

// SQLNotesRepository implements NotesRepository over database/sql.
type SQLNotesRepository struct {
	db *sql.DB
}

// NewNotesRepository wires a SQLite backed repository.
func NewNotesRepository(db *sql.DB) *SQLNotesRepository {
	return &SQLNotesRepository{db: db}
}

// Create inserts a note, assigning id and timestamps.
func (r *SQLNotesRepository) Create(ctx context.Context, note *entity.Note) error {
	if note == nil {
		return fmt.Errorf("note payload is nil")
	}
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Second)
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, content, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID.String(), note.Title, note.Content, note.Category, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// GetByID fetches one note.
func (r *SQLNotesRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, title, content, category, created_at, updated_at FROM notes WHERE id = ?", id.String())
	note, err := scanNoteRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	return note, err
}

// Update rewrites the note and bumps updated_at.
func (r *SQLNotesRepository) Update(ctx context.Context, note *entity.Note) error {
	if note == nil {
		return fmt.Errorf("note payload is nil")
	}
	now := time.Now().UTC().Truncate(time.Second)
	note.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		"UPDATE notes SET title = ?, content = ?, category = ?, updated_at = ? WHERE id = ?",
		note.Title, note.Content, note.Category, formatTime(now), note.ID.String())
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// Delete removes a note.
func (r *SQLNotesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// List retrieves notes matching the filter, newest first.
func (r *SQLNotesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Note, error) {
	query := strings.Builder{}
	query.WriteString("SELECT id, title, content, category, created_at, updated_at FROM notes")

	var clauses []string
	var args []any

	if filter.Q != "" {
		clauses = append(clauses, "(title LIKE ? OR content LIKE ?)")
		pattern := "%" + filter.Q + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}

	query.WriteString(" ORDER BY updated_at DESC")
	query.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, normalizeLimit(filter.Limit), maxInt(filter.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []entity.Note
	for rows.Next() {
		note, err := scanNoteRow(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}
	return notes, rows.Err()
}

func scanNoteRow(row rowScanner) (*entity.Note, error) {
	var (
		note      entity.Note
		id        string
		category  sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&id, &note.Title, &note.Content, &category, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse note id: %w", err)
	}
	note.ID = parsed
	note.Category = nullableString(category)

	if note.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if note.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &note, nil
}
