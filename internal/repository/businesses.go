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

// ErrBusinessNotFound indicates there is no row for the given business id.
var ErrBusinessNotFound = errors.New("business not found")

// BusinessesRepository describes persistence operations for businesses.
type BusinessesRepository interface {
	Create(ctx context.Context, business *entity.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Business, error)
	GetByContactEmail(ctx context.Context, email string) (*entity.Business, error)
	Update(ctx context.Context, business *entity.Business) error
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error)
}

// SQLBusinessesRepository implements BusinessesRepository over database/sql.
type SQLBusinessesRepository struct {
	db *sql.DB
}

// NewBusinessesRepository wires a SQLite backed repository.
func NewBusinessesRepository(db *sql.DB) *SQLBusinessesRepository {
	return &SQLBusinessesRepository{db: db}
}

const businessColumns = "id, name, website_url, contact_email, description, scraped_data, created_at, updated_at"

// Create inserts a new business, assigning id and timestamps.
func (r *SQLBusinessesRepository) Create(ctx context.Context, business *entity.Business) error {
	if business == nil {
		return fmt.Errorf("business payload is nil")
	}
	if business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Second)
	business.CreatedAt = now
	business.UpdatedAt = now

	blob, err := marshalScrapedData(business.ScrapedData)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO businesses (id, name, website_url, contact_email, description, scraped_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		business.ID.String(),
		business.Name,
		business.WebsiteURL,
		business.ContactEmail,
		business.Description,
		blob,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

// GetByID fetches one business.
func (r *SQLBusinessesRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Business, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+businessColumns+" FROM businesses WHERE id = ?", id.String())
	return scanBusiness(row)
}

// GetByContactEmail fetches the business registered under the given email,
// used to deduplicate on first outreach.
func (r *SQLBusinessesRepository) GetByContactEmail(ctx context.Context, email string) (*entity.Business, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+businessColumns+" FROM businesses WHERE contact_email = ? LIMIT 1", email)
	return scanBusiness(row)
}

// Update rewrites the mutable fields and bumps updated_at.
func (r *SQLBusinessesRepository) Update(ctx context.Context, business *entity.Business) error {
	if business == nil {
		return fmt.Errorf("business payload is nil")
	}
	now := time.Now().UTC().Truncate(time.Second)
	business.UpdatedAt = now

	blob, err := marshalScrapedData(business.ScrapedData)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE businesses
		SET name = ?, website_url = ?, contact_email = ?, description = ?, scraped_data = ?, updated_at = ?
		WHERE id = ?`,
		business.Name,
		business.WebsiteURL,
		business.ContactEmail,
		business.Description,
		blob,
		formatTime(now),
		business.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrBusinessNotFound
	}
	return nil
}

// List retrieves businesses matching the filter, newest first.
func (r *SQLBusinessesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error) {
	query := strings.Builder{}
	query.WriteString("SELECT " + businessColumns + " FROM businesses")

	var clauses []string
	var args []any

	if filter.Q != "" {
		clauses = append(clauses, "name LIKE ?")
		args = append(args, "%"+filter.Q+"%")
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

	query.WriteString(" ORDER BY created_at DESC, name ASC")
	query.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, normalizeLimit(filter.Limit), maxInt(filter.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var businesses []entity.Business
	for rows.Next() {
		b, err := scanBusinessRow(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, *b)
	}
	return businesses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBusiness(row *sql.Row) (*entity.Business, error) {
	b, err := scanBusinessRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBusinessNotFound
	}
	return b, err
}

func scanBusinessRow(row rowScanner) (*entity.Business, error) {
	var (
		b          entity.Business
		id         string
		website    sql.NullString
		email      sql.NullString
		desc       sql.NullString
		blob       sql.NullString
		createdAt  string
		updatedAt  string
	)
	if err := row.Scan(&id, &b.Name, &website, &email, &desc, &blob, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan business: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse business id: %w", err)
	}
	b.ID = parsed
	b.WebsiteURL = nullableString(website)
	b.ContactEmail = nullableString(email)
	b.Description = nullableString(desc)

	if blob.Valid && blob.String != "" {
		var data entity.ScrapedData
		if err := json.Unmarshal([]byte(blob.String), &data); err != nil {
			return nil, fmt.Errorf("decode scraped data: %w", err)
		}
		b.ScrapedData = &data
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func marshalScrapedData(data *entity.ScrapedData) (any, error) {
	if data == nil {
		return nil, nil
	}
	blob, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode scraped data: %w", err)
	}
	return string(blob), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := v.String
	return &s
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
