package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
)

// ErrEmailNotFound indicates there is no row for the given email id.
var ErrEmailNotFound = errors.New("email not found")

// ContactFrequency summarises outreach volume for one business.
type ContactFrequency struct {
	BusinessID        uuid.UUID  `json:"business_id"`
	TotalEmails       int        `json:"total_emails"`
	SentEmails        int        `json:"sent_emails"`
	FirstContactAt    *time.Time `json:"first_contact_at,omitempty"`
	LastContactAt     *time.Time `json:"last_contact_at,omitempty"`
	DaysSinceLastSent *int       `json:"days_since_last_sent,omitempty"`
}

// EmailsRepository describes persistence operations for outreach emails.
type EmailsRepository interface {
	Create(ctx context.Context, email *entity.Email) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Email, error)
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Email, error)
	UpdateResponseStatus(ctx context.Context, id uuid.UUID, status entity.ResponseStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time, eventData json.RawMessage) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	ContactFrequency(ctx context.Context, businessID uuid.UUID) (ContactFrequency, error)
}

// SQLEmailsRepository implements EmailsRepository over database/sql.
type SQLEmailsRepository struct {
	db *sql.DB
}

// NewEmailsRepository wires a SQLite backed repository.
func NewEmailsRepository(db *sql.DB) *SQLEmailsRepository {
	return &SQLEmailsRepository{db: db}
}

const emailColumns = "id, business_id, subject, html_content, personal_notes, send_status, response_status, sent_at, created_at, updated_at"

// Create inserts a draft email, assigning id, statuses and timestamps.
func (r *SQLEmailsRepository) Create(ctx context.Context, email *entity.Email) error {
	if email == nil {
		return fmt.Errorf("email payload is nil")
	}
	if email.ID == uuid.Nil {
		email.ID = uuid.New()
	}
	if email.SendStatus == "" {
		email.SendStatus = entity.SendStatusDraft
	}
	if email.ResponseStatus == "" {
		email.ResponseStatus = entity.ResponseStatusUnsent
	}
	now := time.Now().UTC().Truncate(time.Second)
	email.CreatedAt = now
	email.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO emails (id, business_id, subject, html_content, personal_notes, send_status, response_status, sent_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		email.ID.String(),
		email.BusinessID.String(),
		email.Subject,
		email.HTMLContent,
		email.PersonalNotes,
		string(email.SendStatus),
		string(email.ResponseStatus),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	return nil
}

// GetByID fetches one email.
func (r *SQLEmailsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Email, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+emailColumns+" FROM emails WHERE id = ?", id.String())
	email, err := scanEmailRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmailNotFound
	}
	return email, err
}

// List retrieves emails matching the filter, newest first.
func (r *SQLEmailsRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Email, error) {
	query := strings.Builder{}
	query.WriteString("SELECT " + emailColumns + " FROM emails")

	var clauses []string
	var args []any

	if filter.BusinessID != "" {
		clauses = append(clauses, "business_id = ?")
		args = append(args, filter.BusinessID)
	}
	if filter.Q != "" {
		clauses = append(clauses, "subject LIKE ?")
		args = append(args, "%"+filter.Q+"%")
	}
	if filter.SendStatus != "" {
		clauses = append(clauses, "send_status = ?")
		args = append(args, filter.SendStatus)
	}
	if filter.ResponseStatus != "" {
		clauses = append(clauses, "response_status = ?")
		args = append(args, filter.ResponseStatus)
	}
	if filter.DateFrom != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, formatTime(*filter.DateTo))
	}
	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}

	query.WriteString(" ORDER BY created_at DESC")
	query.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, normalizeLimit(filter.Limit), maxInt(filter.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	defer rows.Close()

	var emails []entity.Email
	for rows.Next() {
		email, err := scanEmailRow(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, *email)
	}
	return emails, rows.Err()
}

// UpdateResponseStatus records the reply outcome; re-setting the same status
// is harmless.
func (r *SQLEmailsRepository) UpdateResponseStatus(ctx context.Context, id uuid.UUID, status entity.ResponseStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE emails SET response_status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(time.Now().UTC()), id.String())
	if err != nil {
		return fmt.Errorf("update response status: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrEmailNotFound
	}
	return nil
}

// Delete removes an email and its analytics rows.
func (r *SQLEmailsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start delete tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM email_analytics WHERE email_id = ?", id.String()); err != nil {
		return fmt.Errorf("delete email events: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM emails WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete email: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrEmailNotFound
	}
	return tx.Commit()
}

// MarkSent transitions the email to sent and appends the delivery event in one
// transaction; both rows describe the same provider call.
func (r *SQLEmailsRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time, eventData json.RawMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start send tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE emails
		SET send_status = ?, response_status = ?, sent_at = ?, updated_at = ?
		WHERE id = ?`,
		string(entity.SendStatusSent),
		string(entity.ResponseStatusNone),
		formatTime(sentAt),
		formatTime(sentAt),
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrEmailNotFound
	}

	var blob any
	if len(eventData) > 0 {
		blob = string(eventData)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO email_analytics (id, email_id, event_type, event_data, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), id.String(), string(entity.EventSent), blob, formatTime(sentAt),
	); err != nil {
		return fmt.Errorf("record sent event: %w", err)
	}
	return tx.Commit()
}

// MarkFailed records a failed provider call.
func (r *SQLEmailsRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE emails SET send_status = ?, updated_at = ? WHERE id = ?",
		string(entity.SendStatusFailed), formatTime(time.Now().UTC()), id.String())
	if err != nil {
		return fmt.Errorf("mark email failed: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrEmailNotFound
	}
	return nil
}

// ContactFrequency aggregates outreach volume for one business.
func (r *SQLEmailsRepository) ContactFrequency(ctx context.Context, businessID uuid.UUID) (ContactFrequency, error) {
	freq := ContactFrequency{BusinessID: businessID}

	var first, last sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN send_status = 'sent' THEN 1 ELSE 0 END), 0),
		       MIN(CASE WHEN send_status = 'sent' THEN sent_at END),
		       MAX(CASE WHEN send_status = 'sent' THEN sent_at END)
		FROM emails WHERE business_id = ?`, businessID.String(),
	).Scan(&freq.TotalEmails, &freq.SentEmails, &first, &last)
	if err != nil {
		return freq, fmt.Errorf("contact frequency: %w", err)
	}

	if first.Valid {
		t, err := parseTime(first.String)
		if err != nil {
			return freq, err
		}
		freq.FirstContactAt = &t
	}
	if last.Valid {
		t, err := parseTime(last.String)
		if err != nil {
			return freq, err
		}
		freq.LastContactAt = &t
		days := int(time.Since(t).Hours() / 24)
		freq.DaysSinceLastSent = &days
	}
	return freq, nil
}

func scanEmailRow(row rowScanner) (*entity.Email, error) {
	var (
		email      entity.Email
		id         string
		businessID string
		notes      sql.NullString
		sendStatus string
		respStatus string
		sentAt     sql.NullString
		createdAt  string
		updatedAt  string
	)
	if err := row.Scan(&id, &businessID, &email.Subject, &email.HTMLContent, &notes, &sendStatus, &respStatus, &sentAt, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan email: %w", err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse email id: %w", err)
	}
	parsedBusinessID, err := uuid.Parse(businessID)
	if err != nil {
		return nil, fmt.Errorf("parse email business id: %w", err)
	}
	email.ID = parsedID
	email.BusinessID = parsedBusinessID
	email.PersonalNotes = nullableString(notes)
	email.SendStatus = entity.SendStatus(sendStatus)
	email.ResponseStatus = entity.ResponseStatus(respStatus)

	if sentAt.Valid {
		t, err := parseTime(sentAt.String)
		if err != nil {
			return nil, err
		}
		email.SentAt = &t
	}
	if email.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if email.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &email, nil
}
