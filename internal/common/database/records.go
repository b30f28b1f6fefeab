// internal/common/database/records.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chat-intake/internal/models"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDatabaseUpdateFailed = errors.New("DATABASE_UPDATE_FAILED")
	ErrRecordNotFound       = errors.New("RECORD_NOT_FOUND")
)

// RecordStore writes the rows produced by a chat turn. The turn pipeline
// only ever inserts; MarkNotification is used by the relay.
type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) InsertLead(ctx context.Context, rec *models.LeadRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (id, name, email, phone, situation, source, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID,
		nullIfEmpty(rec.Name),
		nullIfEmpty(rec.Email),
		nullIfEmpty(rec.Phone),
		nullIfEmpty(rec.Situation),
		rec.Source,
		rec.Status,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: leads: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

func (s *RecordStore) InsertAppointment(ctx context.Context, rec *models.AppointmentRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (
			id, title, description, date, start_time, end_time,
			type, status, location, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID,
		rec.Title,
		rec.Description,
		rec.Date,
		rec.StartTime,
		rec.EndTime,
		rec.Type,
		rec.Status,
		rec.Location,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: appointments: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

func (s *RecordStore) InsertNotification(ctx context.Context, rec *models.NotificationRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_queue (
			id, to_email, to_name, subject, body, status, related_type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID,
		nullIfEmpty(rec.ToEmail),
		rec.ToName,
		rec.Subject,
		rec.Body,
		rec.Status,
		rec.RelatedType,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: email_queue: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

// MarkNotification records the delivery outcome of a queued notification.
func (s *RecordStore) MarkNotification(ctx context.Context, id, status string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE email_queue SET status = $2, sent_at = $3
		WHERE id = $1`,
		id, status, at,
	)
	if err != nil {
		return fmt.Errorf("%w: email_queue: %v", ErrDatabaseUpdateFailed, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: email_queue %s", ErrRecordNotFound, id)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
