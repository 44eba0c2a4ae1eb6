package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bivtor/cold-cold-cold/internal/entity"
)

// OverviewCounts holds the raw aggregates behind the analytics overview;
// rates are derived in the service layer.
type OverviewCounts struct {
	TotalEmails      int
	Drafts           int
	Sent             int
	Failed           int
	GoodResponses    int
	BadResponses     int
	AwaitingResponse int
	Events           map[entity.EventType]int
}

// AnalyticsRepository records and aggregates append-only email events.
type AnalyticsRepository interface {
	Append(ctx context.Context, event *entity.AnalyticsEvent) error
	ListByEmail(ctx context.Context, emailID uuid.UUID) ([]entity.AnalyticsEvent, error)
	Overview(ctx context.Context, from, to *time.Time) (OverviewCounts, error)
}

// SQLAnalyticsRepository implements AnalyticsRepository over database/sql.
type SQLAnalyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository wires a SQLite backed repository.
func NewAnalyticsRepository(db *sql.DB) *SQLAnalyticsRepository {
	return &SQLAnalyticsRepository{db: db}
}

// Append inserts one event row. Events are never updated or deleted.
func (r *SQLAnalyticsRepository) Append(ctx context.Context, event *entity.AnalyticsEvent) error {
	if event == nil {
		return fmt.Errorf("event payload is nil")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC().Truncate(time.Second)
	}

	var blob any
	if len(event.EventData) > 0 {
		blob = string(event.EventData)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_analytics (id, email_id, event_type, event_data, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		event.ID.String(), event.EmailID.String(), string(event.EventType), blob, formatTime(event.Timestamp))
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// ListByEmail returns all events for one email, oldest first.
func (r *SQLAnalyticsRepository) ListByEmail(ctx context.Context, emailID uuid.UUID) ([]entity.AnalyticsEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email_id, event_type, event_data, timestamp
		FROM email_analytics WHERE email_id = ? ORDER BY timestamp ASC`, emailID.String())
	if err != nil {
		return nil, fmt.Errorf("list analytics events: %w", err)
	}
	defer rows.Close()

	var events []entity.AnalyticsEvent
	for rows.Next() {
		var (
			event     entity.AnalyticsEvent
			id        string
			email     string
			eventType string
			blob      sql.NullString
			ts        string
		)
		if err := rows.Scan(&id, &email, &eventType, &blob, &ts); err != nil {
			return nil, fmt.Errorf("scan analytics event: %w", err)
		}
		if event.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse event id: %w", err)
		}
		if event.EmailID, err = uuid.Parse(email); err != nil {
			return nil, fmt.Errorf("parse event email id: %w", err)
		}
		event.EventType = entity.EventType(eventType)
		if blob.Valid && blob.String != "" {
			event.EventData = []byte(blob.String)
		}
		if event.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Overview aggregates email statuses and event counts inside the optional
// date range.
func (r *SQLAnalyticsRepository) Overview(ctx context.Context, from, to *time.Time) (OverviewCounts, error) {
	counts := OverviewCounts{Events: map[entity.EventType]int{}}

	emailWhere, emailArgs := dateRangeClause("created_at", from, to)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN send_status = 'draft' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN send_status = 'sent' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN send_status = 'failed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN response_status = 'good_response' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN response_status = 'bad_response' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN response_status = 'no_response' THEN 1 ELSE 0 END), 0)
		FROM emails`+emailWhere, emailArgs...,
	).Scan(&counts.TotalEmails, &counts.Drafts, &counts.Sent, &counts.Failed,
		&counts.GoodResponses, &counts.BadResponses, &counts.AwaitingResponse)
	if err != nil {
		return counts, fmt.Errorf("overview email counts: %w", err)
	}

	eventWhere, eventArgs := dateRangeClause("timestamp", from, to)
	rows, err := r.db.QueryContext(ctx,
		"SELECT event_type, COUNT(*) FROM email_analytics"+eventWhere+" GROUP BY event_type", eventArgs...)
	if err != nil {
		return counts, fmt.Errorf("overview event counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			return counts, fmt.Errorf("scan event count: %w", err)
		}
		counts.Events[entity.EventType(eventType)] = count
	}
	return counts, rows.Err()
}

func dateRangeClause(column string, from, to *time.Time) (string, []any) {
	var clauses []string
	var args []any
	if from != nil {
		clauses = append(clauses, column+" >= ?")
		args = append(args, formatTime(*from))
	}
	if to != nil {
		clauses = append(clauses, column+" <= ?")
		args = append(args, formatTime(*to))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
