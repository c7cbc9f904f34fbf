package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"travel/pkg/db"
)

var (
	ErrNotFound         = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
)

type Store interface {
	Create(ctx context.Context, r *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	ListByUser(ctx context.Context, userID string) ([]Record, error)
	// Cancel flips a booking to cancelled and returns it as it was before.
	Cancel(ctx context.Context, id string) (*Record, error)
}

type PostgresStore struct {
	db db.SQLExecutor
}

func NewPostgresStore(sqlDB db.SQLExecutor) *PostgresStore {
	return &PostgresStore{db: sqlDB}
}

const (
	bookingColumns = `id, user_id, schedule_id, booking_status, seat_preferences, booking_date`

	insertBookingQuery = `
		INSERT INTO bookings (id, user_id, schedule_id, booking_status, seat_preferences, booking_date)
		VALUES ($1, $2, $3, $4, $5, $6)`

	findBookingQuery = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	lockBookingQuery = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	listUserBookingsQuery = `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date DESC, id`

	cancelBookingQuery = `UPDATE bookings SET booking_status = $1 WHERE id = $2`
)

func (s *PostgresStore) Create(ctx context.Context, r *Record) error {
	prefs, err := json.Marshal(r.SeatPreferences)
	if err != nil {
		return fmt.Errorf("marshal seat preferences: %w", err)
	}
	_, err = s.db.ExecContext(ctx, insertBookingQuery,
		r.ID, r.UserID, r.ScheduleID, string(r.Status), prefs, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Record, error) {
	rec, err := scanBooking(s.db.QueryRowContext(ctx, findBookingQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, listUserBookingsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return records, nil
}

// Cancel locks the row for the duration of the check-and-update so two
// concurrent cancellations cannot both succeed.
func (s *PostgresStore) Cancel(ctx context.Context, id string) (*Record, error) {
	var before *Record
	err := s.db.WithTransaction(ctx, sql.LevelReadCommitted, func(ctx context.Context, tx *sql.Tx) error {
		rec, err := scanBooking(tx.QueryRowContext(ctx, lockBookingQuery, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if rec.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}

		if _, err := tx.ExecContext(ctx, cancelBookingQuery, string(StatusCancelled), id); err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		before = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return before, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Record, error) {
	var (
		rec    Record
		status string
		prefs  []byte
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.ScheduleID, &status, &prefs, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan booking: %w", err)
	}

	rec.Status = Status(status)
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &rec.SeatPreferences); err != nil {
			return nil, fmt.Errorf("decode seat preferences for %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}
