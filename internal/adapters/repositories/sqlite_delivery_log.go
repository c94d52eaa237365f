package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"delivery-log-service/internal/domain"
)

// SQLite-backed implementation of the DeliveryLog and DeliveryRepository
// ports. The default for single-host deployments.
type SqliteDeliveryLog struct{ DB *sql.DB }

func NewSqliteDeliveryLog(db *sql.DB) *SqliteDeliveryLog {
	return &SqliteDeliveryLog{DB: db}
}

// Append stores one confirmed delivery row.
func (s *SqliteDeliveryLog) Append(ctx context.Context, rec *domain.DeliveryRecord) error {
	if s.DB == nil {
		return errors.New("sqlite delivery log: DB is nil")
	}

	query := `
	INSERT INTO deliveries (
		delivery_date,
		sender_id,
		client_index,
		quantity,
		feed_type,
		price,
		location,
		notes,
		debt,
		overpaid,
		reminders
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`

	_, err := s.DB.ExecContext(ctx, query,
		rec.Date,
		rec.SenderID,
		rec.ClientIndex,
		rec.Quantity,
		rec.FeedType,
		rec.Price,
		rec.Location,
		rec.Notes,
		rec.Debt,
		rec.Overpaid,
		rec.Reminders,
	)
	if err != nil {
		return fmt.Errorf("append delivery: insert row: %w", err)
	}

	return nil
}

// ListDeliveries returns all logged deliveries in append order.
func (s *SqliteDeliveryLog) ListDeliveries(ctx context.Context) ([]*domain.DeliveryRecord, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite delivery log: DB is nil")
	}

	query := `
	SELECT
		delivery_date,
		sender_id,
		client_index,
		quantity,
		feed_type,
		price,
		location,
		notes,
		debt,
		overpaid,
		reminders
	FROM deliveries
	ORDER BY id;
	`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: query deliveries table: %w", err)
	}
	defer rows.Close()

	recs := make([]*domain.DeliveryRecord, 0, 64)
	for rows.Next() {
		var rec domain.DeliveryRecord
		err := rows.Scan(
			&rec.Date,
			&rec.SenderID,
			&rec.ClientIndex,
			&rec.Quantity,
			&rec.FeedType,
			&rec.Price,
			&rec.Location,
			&rec.Notes,
			&rec.Debt,
			&rec.Overpaid,
			&rec.Reminders,
		)
		if err != nil {
			return nil, fmt.Errorf("list deliveries: scan row: %w", err)
		}
		recs = append(recs, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries: row iteration: %w", err)
	}

	return recs, nil
}
