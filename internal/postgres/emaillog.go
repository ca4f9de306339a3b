// Package postgres implements the persistence boundary on PostgreSQL
// via pgx. All nullable columns go through pgtype values so NULL and
// empty string never blur.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/copperline/courier/internal/domain"
)

// EmailLogStore implements domain.EmailLogStore using PostgreSQL.
type EmailLogStore struct {
	pool *pgxpool.Pool
}

// Compile-time check to ensure EmailLogStore implements domain.EmailLogStore.
var _ domain.EmailLogStore = (*EmailLogStore)(nil)

// NewEmailLogStore creates a new EmailLogStore instance.
func NewEmailLogStore(pool *pgxpool.Pool) *EmailLogStore {
	return &EmailLogStore{pool: pool}
}

// emailLogColumns is the canonical select list; every scan uses it so
// column order never drifts between queries.
const emailLogColumns = `id, provider_id, from_address, to_address, cc_address, bcc_address,
	reply_to_address, subject, content, content_type, tags, status, provider,
	user_id, error_message, sent_at, delivered_at, opened_at, clicked_at,
	bounced_at, complained_at, failed_at, created_at, updated_at`

// CreateEmailLog persists a new entry. The caller populates ID,
// CreatedAt and UpdatedAt before the write.
func (s *EmailLogStore) CreateEmailLog(ctx context.Context, entry *domain.EmailLogEntry) error {
	const query = `
		INSERT INTO email_logs (
			id, provider_id, from_address, to_address, cc_address, bcc_address,
			reply_to_address, subject, content, content_type, tags, status, provider,
			user_id, error_message, sent_at, failed_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		)`

	_, err := s.pool.Exec(ctx, query,
		entry.ID,
		textFromPtr(entry.ProviderID),
		entry.FromAddress,
		entry.ToAddress,
		textFromPtr(entry.CcAddress),
		textFromPtr(entry.BccAddress),
		textFromPtr(entry.ReplyToAddress),
		entry.Subject,
		entry.Content,
		string(entry.ContentType),
		textFromPtr(entry.Tags),
		string(entry.Status),
		string(entry.Provider),
		uuidFromPtr(entry.UserID),
		textFromPtr(entry.ErrorMessage),
		timestamptzFromPtr(entry.SentAt),
		timestamptzFromPtr(entry.FailedAt),
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert email log: %w", err)
	}

	return nil
}

// GetEmailLog returns the entry with the given id.
func (s *EmailLogStore) GetEmailLog(ctx context.Context, id uuid.UUID) (*domain.EmailLogEntry, error) {
	query := `SELECT ` + emailLogColumns + ` FROM email_logs WHERE id = $1`

	entry, err := scanEmailLog(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("emaillog.get", "email log", id.String())
		}
		return nil, fmt.Errorf("failed to get email log: %w", err)
	}

	return entry, nil
}

// GetEmailLogByProviderID returns the entry whose vendor message id
// matches. This is the webhook reconciliation lookup.
func (s *EmailLogStore) GetEmailLogByProviderID(ctx context.Context, providerID string) (*domain.EmailLogEntry, error) {
	query := `SELECT ` + emailLogColumns + ` FROM email_logs WHERE provider_id = $1`

	entry, err := scanEmailLog(s.pool.QueryRow(ctx, query, providerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("emaillog.get", "email log", providerID)
		}
		return nil, fmt.Errorf("failed to get email log by provider id: %w", err)
	}

	return entry, nil
}

// ListEmailLogs returns entries matching the query, newest first.
func (s *EmailLogStore) ListEmailLogs(ctx context.Context, q domain.EmailLogQuery) ([]*domain.EmailLogEntry, error) {
	var (
		conditions []string
		args       []any
	)

	if q.UserID != nil {
		args = append(args, *q.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if q.Status != nil {
		args = append(args, string(*q.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Provider != nil {
		args = append(args, string(*q.Provider))
		conditions = append(conditions, fmt.Sprintf("provider = $%d", len(args)))
	}

	query := `SELECT ` + emailLogColumns + ` FROM email_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list email logs: %w", err)
	}
	defer rows.Close()

	var entries []*domain.EmailLogEntry
	for rows.Next() {
		entry, err := scanEmailLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list email logs: %w", err)
	}

	return entries, nil
}

// UpdateEmailLogStatus applies a status transition keyed by entry id.
// The status's timestamp column receives the event's own timestamp, so
// replaying the same event writes identical values.
func (s *EmailLogStore) UpdateEmailLogStatus(ctx context.Context, id uuid.UUID, update domain.StatusUpdate) (*domain.EmailLogEntry, error) {
	set := []string{"status = $2", "error_message = $3", "updated_at = now()"}
	args := []any{id, string(update.Status), textFromPtr(update.ErrorMessage)}

	// StatusTimestamp is a closed whitelist of column names; the value
	// itself still binds as a parameter.
	if column, ok := domain.StatusTimestamp(update.Status); ok {
		args = append(args, update.OccurredAt)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	query := fmt.Sprintf(
		`UPDATE email_logs SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(set, ", "), emailLogColumns,
	)

	entry, err := scanEmailLog(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("emaillog.update", "email log", id.String())
		}
		return nil, fmt.Errorf("failed to update email log status: %w", err)
	}

	return entry, nil
}

// scanEmailLog maps one row onto a domain entry.
func scanEmailLog(row pgx.Row) (*domain.EmailLogEntry, error) {
	var (
		entry domain.EmailLogEntry

		providerID, ccAddress, bccAddress, replyTo pgtype.Text
		tags, errorMessage                         pgtype.Text
		contentType, status, provider              string
		userID                                     pgtype.UUID

		sentAt, deliveredAt, openedAt, clickedAt pgtype.Timestamptz
		bouncedAt, complainedAt, failedAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&providerID,
		&entry.FromAddress,
		&entry.ToAddress,
		&ccAddress,
		&bccAddress,
		&replyTo,
		&entry.Subject,
		&entry.Content,
		&contentType,
		&tags,
		&status,
		&provider,
		&userID,
		&errorMessage,
		&sentAt,
		&deliveredAt,
		&openedAt,
		&clickedAt,
		&bouncedAt,
		&complainedAt,
		&failedAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.ProviderID = ptrFromText(providerID)
	entry.CcAddress = ptrFromText(ccAddress)
	entry.BccAddress = ptrFromText(bccAddress)
	entry.ReplyToAddress = ptrFromText(replyTo)
	entry.Tags = ptrFromText(tags)
	entry.ErrorMessage = ptrFromText(errorMessage)
	entry.ContentType = domain.ContentType(contentType)
	entry.Status = domain.EmailStatus(status)
	entry.Provider = domain.Provider(provider)
	entry.UserID = ptrFromUUID(userID)
	entry.SentAt = ptrFromTimestamptz(sentAt)
	entry.DeliveredAt = ptrFromTimestamptz(deliveredAt)
	entry.OpenedAt = ptrFromTimestamptz(openedAt)
	entry.ClickedAt = ptrFromTimestamptz(clickedAt)
	entry.BouncedAt = ptrFromTimestamptz(bouncedAt)
	entry.ComplainedAt = ptrFromTimestamptz(complainedAt)
	entry.FailedAt = ptrFromTimestamptz(failedAt)

	return &entry, nil
}

// =============================================================================
// pgtype conversion helpers
// =============================================================================

func textFromPtr(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func ptrFromText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func timestamptzFromPtr(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func ptrFromTimestamptz(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	ts := t.Time
	return &ts
}

func uuidFromPtr(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func ptrFromUUID(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}
