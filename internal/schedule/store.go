package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"travel/pkg/db"
	"travel/pkg/idgen"
)

var ErrNotFound = errors.New("schedule not found")

// Store persists schedules together with their seat classes. Records are
// append-only: nothing here updates or deletes a schedule.
type Store interface {
	CreateBatch(ctx context.Context, records []*ScheduleRecord) error
	Search(ctx context.Context, c SearchCriteria) ([]ScheduleRecord, error)
	FindByID(ctx context.Context, id int64) (*ScheduleRecord, error)
	FindSeatClass(ctx context.Context, scheduleID int64, className string) (*SeatClassAvailability, error)
}

type PostgresStore struct {
	db  db.SQLExecutor
	ids idgen.Generator
	now func() time.Time
}

func NewPostgresStore(sqlDB db.SQLExecutor, ids idgen.Generator) *PostgresStore {
	return &PostgresStore{
		db:  sqlDB,
		ids: ids,
		now: func() time.Time { return time.Now().UTC() },
	}
}

const (
	insertScheduleQuery = `
		INSERT INTO transport_schedules (
			id, transport_mode, transport_id, transport_name,
			origin, origin_code, destination, destination_code,
			departure_time, arrival_time, duration, distance, halts,
			origin_query, destination_query, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	insertSeatQuery = `
		INSERT INTO seat_availability (id, schedule_id, class_name, class_description, status, price)
		VALUES ($1, $2, $3, $4, $5, $6)`

	scheduleColumns = `
		id, transport_mode, transport_id, transport_name,
		origin, origin_code, destination, destination_code,
		departure_time, arrival_time, duration, distance, halts,
		origin_query, destination_query, created_at`

	searchQuery = `SELECT` + scheduleColumns + `
		FROM transport_schedules
		WHERE transport_mode = $1
		  AND (origin_query ILIKE $2 OR origin ILIKE $2)
		  AND (destination_query ILIKE $3 OR destination ILIKE $3)
		  AND departure_time BETWEEN $4 AND $5
		ORDER BY departure_time, id`

	findByIDQuery = `SELECT` + scheduleColumns + `
		FROM transport_schedules
		WHERE id = $1`

	seatsByScheduleQuery = `
		SELECT id, schedule_id, class_name, class_description, status, price
		FROM seat_availability
		WHERE schedule_id = ANY($1)
		ORDER BY schedule_id, id`

	findSeatClassQuery = `
		SELECT id, schedule_id, class_name, class_description, status, price
		FROM seat_availability
		WHERE schedule_id = $1 AND LOWER(class_name) = LOWER($2)
		ORDER BY id
		LIMIT 1`
)

// CreateBatch writes every record and its seats in a single transaction.
// Ids and creation time are written back onto the records only after commit.
func (s *PostgresStore) CreateBatch(ctx context.Context, records []*ScheduleRecord) error {
	if len(records) == 0 {
		return nil
	}

	createdAt := s.now()
	scheduleIDs := make([]int64, len(records))
	seatIDs := make([][]int64, len(records))
	for i, rec := range records {
		scheduleIDs[i] = s.ids.GenerateID()
		seatIDs[i] = make([]int64, len(rec.SeatAvailability))
		for j := range rec.SeatAvailability {
			seatIDs[i][j] = s.ids.GenerateID()
		}
	}

	err := s.db.WithTransaction(ctx, sql.LevelReadCommitted, func(ctx context.Context, tx *sql.Tx) error {
		for i, rec := range records {
			_, err := tx.ExecContext(ctx, insertScheduleQuery,
				scheduleIDs[i], string(rec.Mode), rec.CarrierID, rec.CarrierName,
				rec.Origin, nullString(rec.OriginCode), rec.Destination, nullString(rec.DestinationCode),
				rec.DepartureTime, rec.ArrivalTime, rec.Duration, nullString(rec.Distance), nullString(rec.Halts),
				rec.OriginQuery, rec.DestinationQuery, createdAt,
			)
			if err != nil {
				return fmt.Errorf("insert schedule %s: %w", rec.CarrierID, err)
			}

			for j, seat := range rec.SeatAvailability {
				_, err := tx.ExecContext(ctx, insertSeatQuery,
					seatIDs[i][j], scheduleIDs[i], seat.ClassName, nullString(seat.ClassDescription),
					seat.Status, seat.Price,
				)
				if err != nil {
					return fmt.Errorf("insert seat class %s for %s: %w", seat.ClassName, rec.CarrierID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i, rec := range records {
		rec.ID = scheduleIDs[i]
		rec.CreatedAt = createdAt
		for j := range rec.SeatAvailability {
			rec.SeatAvailability[j].ID = seatIDs[i][j]
			rec.SeatAvailability[j].ScheduleID = scheduleIDs[i]
		}
	}
	return nil
}

// Search matches origin and destination as case-insensitive substrings of
// either the caller's original search term or the carrier-reported name.
func (s *PostgresStore) Search(ctx context.Context, c SearchCriteria) ([]ScheduleRecord, error) {
	rows, err := s.db.QueryContext(ctx, searchQuery,
		string(c.Mode), containsPattern(c.Origin), containsPattern(c.Destination), c.From, c.To,
	)
	if err != nil {
		return nil, fmt.Errorf("search schedules: %w", err)
	}
	defer rows.Close()

	var records []ScheduleRecord
	for rows.Next() {
		rec, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	if err := s.attachSeats(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*ScheduleRecord, error) {
	rec, err := scanSchedule(s.db.QueryRowContext(ctx, findByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	records := []ScheduleRecord{*rec}
	if err := s.attachSeats(ctx, records); err != nil {
		return nil, err
	}
	return &records[0], nil
}

// FindSeatClass returns nil, nil when the schedule has no such class.
func (s *PostgresStore) FindSeatClass(ctx context.Context, scheduleID int64, className string) (*SeatClassAvailability, error) {
	seat, err := scanSeat(s.db.QueryRowContext(ctx, findSeatClassQuery, scheduleID, className))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return seat, nil
}

func (s *PostgresStore) attachSeats(ctx context.Context, records []ScheduleRecord) error {
	ids := make([]int64, len(records))
	index := make(map[int64]int, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		index[rec.ID] = i
		records[i].SeatAvailability = []SeatClassAvailability{}
	}

	rows, err := s.db.QueryContext(ctx, seatsByScheduleQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load seat availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return err
		}
		if i, ok := index[seat.ScheduleID]; ok {
			records[i].SeatAvailability = append(records[i].SeatAvailability, *seat)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate seat availability: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*ScheduleRecord, error) {
	var (
		rec                                          ScheduleRecord
		mode                                         string
		originCode, destinationCode, distance, halts sql.NullString
		originQuery, destinationQuery                sql.NullString
	)
	err := row.Scan(
		&rec.ID, &mode, &rec.CarrierID, &rec.CarrierName,
		&rec.Origin, &originCode, &rec.Destination, &destinationCode,
		&rec.DepartureTime, &rec.ArrivalTime, &rec.Duration, &distance, &halts,
		&originQuery, &destinationQuery, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan schedule: %w", err)
	}

	rec.Mode = Mode(mode)
	rec.OriginCode = originCode.String
	rec.DestinationCode = destinationCode.String
	rec.Distance = distance.String
	rec.Halts = halts.String
	rec.OriginQuery = originQuery.String
	rec.DestinationQuery = destinationQuery.String
	return &rec, nil
}

func scanSeat(row rowScanner) (*SeatClassAvailability, error) {
	var (
		seat        SeatClassAvailability
		description sql.NullString
	)
	err := row.Scan(&seat.ID, &seat.ScheduleID, &seat.ClassName, &description, &seat.Status, &seat.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan seat availability: %w", err)
	}
	seat.ClassDescription = description.String
	return &seat, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a search term into an ILIKE substring pattern with
// wildcards in the term itself escaped.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
