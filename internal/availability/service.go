// Package availability resolves travel queries into schedules, reading
// persisted schedules first and falling back to the extraction source.
package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"travel/internal/apperror"
	"travel/internal/normalize"
	"travel/internal/schedule"
	"travel/pkg/logger"
	"travel/pkg/metrics"
)

type Source string

const (
	SourceDatabase Source = "database"
	SourceScraper  Source = "scraper"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Extractor acquires raw schedules from a live third-party source. Calls are
// slow and may be cancelled through ctx.
type Extractor interface {
	Extract(ctx context.Context, origin, destination, date string) ([]schedule.RawSchedule, error)
}

// Lookuper reads persisted schedules. Invalidate is called after new
// schedules are persisted for q's mode and day.
type Lookuper interface {
	Lookup(ctx context.Context, q schedule.Query) ([]schedule.ScheduleRecord, error)
	Invalidate(ctx context.Context, q schedule.Query) error
}

// Result is the outcome of one resolution. Failures are results too, with
// Status "error" and the cause kept in err.
type Result struct {
	Input     schedule.Query            `json:"input"`
	Schedules []schedule.ScheduleRecord `json:"schedules"`
	Status    string                    `json:"status"`
	Message   string                    `json:"message,omitempty"`
	Source    Source                    `json:"source"`
	Code      apperror.Kind             `json:"code,omitempty"`

	err error
}

func (r Result) Err() error { return r.err }

type Service struct {
	resolver  Lookuper
	store     schedule.Store
	extractor Extractor
	metrics   *metrics.Registry
	tracer    trace.Tracer
	logger    logger.Client
}

func NewService(resolver Lookuper, store schedule.Store, extractor Extractor, m *metrics.Registry, log logger.Client) *Service {
	return &Service{
		resolver:  resolver,
		store:     store,
		extractor: extractor,
		metrics:   m,
		tracer:    otel.Tracer("travel/internal/availability"),
		logger:    log,
	}
}

// Resolve never panics on bad input; every failure comes back as a Result.
func (s *Service) Resolve(ctx context.Context, q schedule.Query) Result {
	ctx, span := s.tracer.Start(ctx, "availability.Resolve")
	defer span.End()

	q, err := validate(q)
	if err != nil {
		return s.fail(span, q, SourceDatabase, err)
	}
	span.SetAttributes(
		attribute.String("travel.mode", string(q.Mode)),
		attribute.String("travel.origin", q.Origin),
		attribute.String("travel.destination", q.Destination),
		attribute.String("travel.datetime", q.Datetime),
	)

	records, err := s.resolver.Lookup(ctx, q)
	if err == nil {
		s.logger.Info("schedules served from store",
			logger.Field{Key: "mode", Value: string(q.Mode)},
			logger.Field{Key: "origin", Value: q.Origin},
			logger.Field{Key: "destination", Value: q.Destination},
			logger.Field{Key: "count", Value: len(records)},
		)
		return s.succeed(span, q, SourceDatabase, records,
			fmt.Sprintf("Found %d schedules from database", len(records)))
	}
	if !errors.Is(err, schedule.ErrMiss) {
		return s.fail(span, q, SourceDatabase, err)
	}
	span.AddEvent("cache miss")

	if !q.Mode.Implemented() {
		return s.fail(span, q, SourceScraper, apperror.UnsupportedMode(string(q.Mode)))
	}

	raws, err := s.extract(ctx, q)
	if err != nil {
		return s.fail(span, q, SourceScraper, err)
	}

	created, err := s.persist(ctx, q, raws)
	if err != nil {
		return s.fail(span, q, SourceScraper, err)
	}
	if err := s.resolver.Invalidate(ctx, q); err != nil {
		s.logger.Error("failed to invalidate schedule lookups",
			logger.Field{Key: "mode", Value: string(q.Mode)},
			logger.Field{Key: "datetime", Value: q.Datetime},
			logger.Field{Key: "error", Value: err},
		)
	}

	return s.succeed(span, q, SourceScraper, created,
		fmt.Sprintf("Successfully scraped %d %s", len(created), pluralMode(q.Mode, len(created))))
}

func (s *Service) extract(ctx context.Context, q schedule.Query) ([]schedule.RawSchedule, error) {
	ctx, span := s.tracer.Start(ctx, "availability.Extract")
	defer span.End()

	start := time.Now()
	raws, err := s.extractor.Extract(ctx, q.Origin, q.Destination, q.Datetime)
	s.metrics.ExtractionSec.Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		s.logger.Error("extraction failed",
			logger.Field{Key: "mode", Value: string(q.Mode)},
			logger.Field{Key: "origin", Value: q.Origin},
			logger.Field{Key: "destination", Value: q.Destination},
			logger.Field{Key: "error", Value: err},
		)
		return nil, apperror.ExtractionFailure(fmt.Sprintf("%s extraction failed: %v", q.Mode, err), err)
	}
	if len(raws) == 0 {
		return nil, apperror.ExtractionFailure("no schedules found", nil)
	}
	span.SetAttributes(attribute.Int("travel.extracted", len(raws)))
	return raws, nil
}

// persist normalizes the raw schedules and writes them as one batch.
func (s *Service) persist(ctx context.Context, q schedule.Query, raws []schedule.RawSchedule) ([]schedule.ScheduleRecord, error) {
	ctx, span := s.tracer.Start(ctx, "availability.Persist")
	defer span.End()

	batch := make([]*schedule.ScheduleRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := buildRecord(q, raw)
		if err != nil {
			return nil, apperror.PersistenceFailure("failed to normalize extracted schedules", err)
		}
		batch = append(batch, rec)
	}

	if err := s.store.CreateBatch(ctx, batch); err != nil {
		span.RecordError(err)
		s.logger.Error("schedule batch rolled back",
			logger.Field{Key: "count", Value: len(batch)},
			logger.Field{Key: "error", Value: err},
		)
		return nil, apperror.PersistenceFailure("failed to persist schedules", err)
	}
	s.metrics.SchedulesPersisted.Add(float64(len(batch)))

	created := make([]schedule.ScheduleRecord, len(batch))
	for i, rec := range batch {
		created[i] = *rec
	}
	return created, nil
}

// buildRecord anchors the raw clock times on the query's date. An arrival at
// or before departure is taken to be on the following day.
func buildRecord(q schedule.Query, raw schedule.RawSchedule) (*schedule.ScheduleRecord, error) {
	departure := normalize.CombineTimeWithDate(raw.DepartureTime, q.Datetime)
	arrival := normalize.CombineTimeWithDate(raw.ArrivalTime, q.Datetime)
	if departure.IsZero() || arrival.IsZero() {
		return nil, fmt.Errorf("%w: base date %q", normalize.ErrMalformedDate, q.Datetime)
	}
	if !arrival.After(departure) {
		arrival = arrival.AddDate(0, 0, 1)
	}

	rec := &schedule.ScheduleRecord{
		Mode:             q.Mode,
		CarrierID:        strings.TrimSpace(raw.CarrierID),
		CarrierName:      strings.TrimSpace(raw.CarrierName),
		Origin:           firstNonEmpty(raw.Origin, q.Origin),
		OriginCode:       stationCode(q.Mode, raw.OriginCode, raw.Origin),
		Destination:      firstNonEmpty(raw.Destination, q.Destination),
		DestinationCode:  stationCode(q.Mode, raw.DestinationCode, raw.Destination),
		DepartureTime:    departure,
		ArrivalTime:      arrival,
		Duration:         strings.TrimSpace(raw.Duration),
		Distance:         strings.TrimSpace(raw.Distance),
		Halts:            strings.TrimSpace(raw.Halts),
		OriginQuery:      q.Origin,
		DestinationQuery: q.Destination,
		SeatAvailability: make([]schedule.SeatClassAvailability, 0, len(raw.Seats)),
	}
	for _, seat := range raw.Seats {
		rec.SeatAvailability = append(rec.SeatAvailability, schedule.SeatClassAvailability{
			ClassName:        strings.TrimSpace(seat.ClassName),
			ClassDescription: strings.TrimSpace(seat.ClassDescription),
			Status:           strings.TrimSpace(seat.Status),
			Price:            normalize.CleanPriceText(seat.Price),
		})
	}
	return rec, nil
}

// stationCode keeps carrier-reported codes. Airports are the only places
// whose code can be recovered from the name text.
func stationCode(mode schedule.Mode, code, name string) string {
	code = strings.TrimSpace(code)
	if code != "" {
		return strings.ToUpper(code)
	}
	if mode == schedule.ModeFlight && strings.TrimSpace(name) != "" {
		return normalize.NormalizeAirportCode(name)
	}
	return ""
}

func validate(q schedule.Query) (schedule.Query, error) {
	q.Origin = strings.TrimSpace(q.Origin)
	q.Destination = strings.TrimSpace(q.Destination)
	q.Datetime = strings.TrimSpace(q.Datetime)

	var missing []string
	if strings.TrimSpace(string(q.Mode)) == "" {
		missing = append(missing, "mode")
	}
	if q.Origin == "" {
		missing = append(missing, "origin")
	}
	if q.Destination == "" {
		missing = append(missing, "destination")
	}
	if q.Datetime == "" {
		missing = append(missing, "datetime")
	}
	if len(missing) > 0 {
		return q, apperror.Validation(strings.Join(missing, ", ") + " required")
	}

	mode, ok := schedule.ParseMode(string(q.Mode))
	if !ok {
		return q, apperror.Validation(fmt.Sprintf("Unsupported transport mode: %s", q.Mode))
	}
	q.Mode = mode
	return q, nil
}

func (s *Service) succeed(span trace.Span, q schedule.Query, source Source, records []schedule.ScheduleRecord, msg string) Result {
	s.metrics.Resolutions.WithLabelValues(string(source), StatusSuccess).Inc()
	span.SetAttributes(attribute.String("travel.source", string(source)), attribute.Int("travel.schedules", len(records)))
	return Result{
		Input:     q,
		Schedules: records,
		Status:    StatusSuccess,
		Message:   msg,
		Source:    source,
	}
}

func (s *Service) fail(span trace.Span, q schedule.Query, source Source, err error) Result {
	s.metrics.Resolutions.WithLabelValues(string(source), StatusError).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal("resolution failed", err)
	}
	if appErr.Kind != apperror.KindValidation && appErr.Kind != apperror.KindUnsupportedMode {
		s.logger.Warn("resolution failed",
			logger.Field{Key: "mode", Value: string(q.Mode)},
			logger.Field{Key: "code", Value: string(appErr.Kind)},
			logger.Field{Key: "error", Value: err},
		)
	}
	return Result{
		Input:     q,
		Schedules: []schedule.ScheduleRecord{},
		Status:    StatusError,
		Message:   appErr.Message,
		Source:    source,
		Code:      appErr.Kind,
		err:       appErr,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func pluralMode(mode schedule.Mode, n int) string {
	if n == 1 {
		return string(mode)
	}
	if mode == schedule.ModeBus {
		return "buses"
	}
	return string(mode) + "s"
}
