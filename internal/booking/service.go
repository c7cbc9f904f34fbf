package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"travel/internal/apperror"
	"travel/internal/schedule"
	"travel/pkg/events"
	"travel/pkg/logger"
	"travel/pkg/metrics"
)

// Manager creates and cancels bookings against persisted schedules.
//
// Seat rows are read without a lock when booking, so two requests can both
// be confirmed against the last seat of a class.
type Manager struct {
	bookings  Store
	schedules schedule.Store
	policy    *Policy
	publisher events.Publisher
	metrics   *metrics.Registry
	logger    logger.Client
	newID     func() string
	now       func() time.Time
}

func NewManager(
	bookings Store,
	schedules schedule.Store,
	policy *Policy,
	publisher events.Publisher,
	m *metrics.Registry,
	log logger.Client,
) *Manager {
	if policy == nil {
		policy = NewPolicy()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Manager{
		bookings:  bookings,
		schedules: schedules,
		policy:    policy,
		publisher: publisher,
		metrics:   m,
		logger:    log,
		newID:     func() string { return uuid.NewString() },
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (m *Manager) CreateBooking(ctx context.Context, req CreateRequest) (*Response, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, apperror.Validation("user_id is required")
	}

	sched, err := m.schedules.FindByID(ctx, req.ScheduleID)
	if errors.Is(err, schedule.ErrNotFound) {
		return nil, apperror.NotFound("Schedule")
	}
	if err != nil {
		return nil, apperror.Internal("failed to load schedule", err)
	}

	seatClass := strings.TrimSpace(req.SeatPreferences.SeatClass)
	if seatClass == "" {
		return nil, apperror.Validation("seat_preferences.seat_class is required")
	}

	seat, err := m.schedules.FindSeatClass(ctx, sched.ID, seatClass)
	if err != nil {
		return nil, apperror.Internal("failed to load seat availability", err)
	}
	if seat == nil {
		return nil, apperror.Missing(fmt.Sprintf("No seat availability data for class '%s'", seatClass))
	}

	outcome := m.policy.Decide(seat.Status)
	prefs := req.SeatPreferences
	prefs.SeatClass = seatClass
	rec := &Record{
		ID:              m.newID(),
		UserID:          req.UserID,
		ScheduleID:      sched.ID,
		Status:          Status(outcome),
		SeatPreferences: prefs,
		CreatedAt:       m.now(),
	}
	if err := m.bookings.Create(ctx, rec); err != nil {
		m.logger.Error("failed to persist booking",
			logger.Field{Key: "schedule_id", Value: sched.ID},
			logger.Field{Key: "error", Value: err},
		)
		return nil, apperror.PersistenceFailure("failed to create booking", err)
	}

	m.metrics.Bookings.WithLabelValues(string(outcome)).Inc()
	m.logger.Info("booking created",
		logger.Field{Key: "booking_id", Value: rec.ID},
		logger.Field{Key: "schedule_id", Value: sched.ID},
		logger.Field{Key: "seat_class", Value: seatClass},
		logger.Field{Key: "seat_status", Value: seat.Status},
		logger.Field{Key: "outcome", Value: string(outcome)},
	)
	m.publish(ctx, events.TypeBookingCreated, rec)

	message := fmt.Sprintf("Booking %s for %s (%s) from %s to %s in %s",
		outcome, sched.CarrierName, sched.CarrierID, sched.Origin, sched.Destination, seatClass)
	return &Response{
		BookingID:     rec.ID,
		Status:        "success",
		Message:       message,
		BookingStatus: outcome,
	}, nil
}

// CancelBooking is terminal: a second cancel of the same booking fails with
// AlreadyCancelled and leaves the row untouched.
func (m *Manager) CancelBooking(ctx context.Context, bookingID string) (*CancelResponse, error) {
	if strings.TrimSpace(bookingID) == "" {
		return nil, apperror.Validation("booking_id is required")
	}

	before, err := m.bookings.Cancel(ctx, bookingID)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, apperror.NotFound("Booking")
	case errors.Is(err, ErrAlreadyCancelled):
		return nil, apperror.AlreadyCancelled()
	case err != nil:
		return nil, apperror.PersistenceFailure("failed to cancel booking", err)
	}

	m.metrics.Cancellations.Inc()
	cancelled := *before
	cancelled.Status = StatusCancelled
	m.publish(ctx, events.TypeBookingCancelled, &cancelled)

	message := "Booking cancelled successfully"
	sched, err := m.schedules.FindByID(ctx, before.ScheduleID)
	switch {
	case err == nil:
		message = fmt.Sprintf("Booking cancelled for %s (%s) from %s to %s",
			sched.CarrierName, sched.CarrierID, sched.Origin, sched.Destination)
	case !errors.Is(err, schedule.ErrNotFound):
		m.logger.Warn("schedule lookup after cancel failed",
			logger.Field{Key: "booking_id", Value: bookingID},
			logger.Field{Key: "error", Value: err},
		)
	}

	m.logger.Info("booking cancelled",
		logger.Field{Key: "booking_id", Value: bookingID},
		logger.Field{Key: "previous_status", Value: string(before.Status)},
	)
	return &CancelResponse{Status: "success", Message: message}, nil
}

func (m *Manager) ListUserBookings(ctx context.Context, userID string) (*UserBookings, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperror.Validation("user_id is required")
	}
	records, err := m.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to list bookings", err)
	}
	return &UserBookings{UserID: userID, Bookings: records}, nil
}

func (m *Manager) GetBookingDetails(ctx context.Context, bookingID string) (*Detail, error) {
	rec, err := m.bookings.FindByID(ctx, bookingID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NotFound("Booking")
	}
	if err != nil {
		return nil, apperror.Internal("failed to load booking", err)
	}

	detail := &Detail{Record: *rec}
	sched, err := m.schedules.FindByID(ctx, rec.ScheduleID)
	switch {
	case err == nil:
		detail.Schedule = sched
	case !errors.Is(err, schedule.ErrNotFound):
		return nil, apperror.Internal("failed to load schedule", err)
	}
	return detail, nil
}

// publish never fails the caller; the booking is already committed.
func (m *Manager) publish(ctx context.Context, eventType string, rec *Record) {
	err := m.publisher.PublishBooking(ctx, events.BookingEvent{
		Type:       eventType,
		BookingID:  rec.ID,
		UserID:     rec.UserID,
		ScheduleID: rec.ScheduleID,
		Status:     string(rec.Status),
		SeatClass:  rec.SeatPreferences.SeatClass,
		OccurredAt: m.now(),
	})
	if err != nil {
		m.logger.Warn("failed to publish booking event",
			logger.Field{Key: "type", Value: eventType},
			logger.Field{Key: "booking_id", Value: rec.ID},
			logger.Field{Key: "error", Value: err},
		)
	}
}
