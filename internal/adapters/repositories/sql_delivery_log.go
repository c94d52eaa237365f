package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"delivery-log-service/internal/domain"
	"delivery-log-service/internal/platform/obs"
)

// SQLDeliveryLog is the postgres-backed implementation of the DeliveryLog
// and DeliveryRepository ports, for deployments where several webhook
// replicas share one log.
type SQLDeliveryLog struct{ DB *sql.DB }

func NewSQLDeliveryLog(db *sql.DB) *SQLDeliveryLog {
	return &SQLDeliveryLog{DB: db}
}

// Append stores one confirmed delivery row.
func (s *SQLDeliveryLog) Append(ctx context.Context, rec *domain.DeliveryRecord) (err error) {
	defer obs.Time(ctx, "deliveries.append")(&err)

	if s.DB == nil {
		return errors.New("sql delivery log: DB is nil")
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
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`

	_, err = s.DB.ExecContext(ctx, query,
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
func (s *SQLDeliveryLog) ListDeliveries(ctx context.Context) (_ []*domain.DeliveryRecord, err error) {
	defer obs.Time(ctx, "deliveries.list")(&err)

	if s.DB == nil {
		return nil, errors.New("sql delivery log: DB is nil")
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
