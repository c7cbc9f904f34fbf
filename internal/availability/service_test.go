package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"travel/internal/apperror"
	"travel/internal/booking"
	"travel/internal/schedule"
	"travel/pkg/events"
	"travel/pkg/logger"
	"travel/pkg/metrics"
)

type fixture struct {
	service   *Service
	store     *memStore
	extractor *mockExtractor
	metrics   *metrics.Registry
}

func newFixture() *fixture {
	f := &fixture{
		store:     newMemStore(),
		extractor: &mockExtractor{},
		metrics:   metrics.NewRegistry(),
	}
	resolver := schedule.NewResolver(f.store, nil, 0, logger.Nop{})
	f.service = NewService(resolver, f.store, f.extractor, f.metrics, logger.Nop{})
	return f
}

var delhiMumbai = schedule.Query{Mode: schedule.ModeTrain, Origin: "Delhi", Destination: "Mumbai", Datetime: "2024-08-11"}

func TestResolve_MissExtractsAndPersists(t *testing.T) {
	f := newFixture()
	f.extractor.On("Extract", mock.Anything, "Delhi", "Mumbai", "2024-08-11").
		Return([]schedule.RawSchedule{rajdhaniRaw()}, nil).Once()

	result := f.service.Resolve(context.Background(), delhiMumbai)

	require.Equal(t, StatusSuccess, result.Status, result.Message)
	assert.Equal(t, SourceScraper, result.Source)
	assert.Equal(t, "Successfully scraped 1 train", result.Message)
	require.Len(t, result.Schedules, 1)

	rec := result.Schedules[0]
	assert.NotZero(t, rec.ID)
	assert.Equal(t, "NDLS", rec.OriginCode)
	assert.Equal(t, "Delhi", rec.OriginQuery)
	assert.Equal(t, "Mumbai", rec.DestinationQuery)
	assert.Equal(t, time.Date(2024, 8, 11, 16, 55, 0, 0, time.UTC), rec.DepartureTime)
	assert.Equal(t, time.Date(2024, 8, 12, 8, 35, 0, 0, time.UTC), rec.ArrivalTime)
	require.Len(t, rec.SeatAvailability, 2)
	assert.Equal(t, "1500", rec.SeatAvailability[0].Price)
	assert.Equal(t, "0", rec.SeatAvailability[1].Price)
	assert.Equal(t, rec.ID, rec.SeatAvailability[0].ScheduleID)

	assert.Len(t, f.store.records, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.SchedulesPersisted))
	f.extractor.AssertExpectations(t)
}

func newRecordingFixture() (*fixture, *recordingLookuper) {
	f := newFixture()
	lookups := &recordingLookuper{Resolver: schedule.NewResolver(f.store, nil, 0, logger.Nop{})}
	f.service = NewService(lookups, f.store, f.extractor, f.metrics, logger.Nop{})
	return f, lookups
}

func TestResolve_PersistedMissInvalidatesLookups(t *testing.T) {
	f, lookups := newRecordingFixture()
	f.extractor.On("Extract", mock.Anything, "Delhi", "Mumbai", "2024-08-11").
		Return([]schedule.RawSchedule{rajdhaniRaw()}, nil).Once()

	result := f.service.Resolve(context.Background(), delhiMumbai)

	require.Equal(t, StatusSuccess, result.Status, result.Message)
	require.Len(t, lookups.invalidated, 1)
	assert.Equal(t, delhiMumbai, lookups.invalidated[0])
}

func TestResolve_InvalidateFailureKeepsResult(t *testing.T) {
	f, lookups := newRecordingFixture()
	lookups.invalidateErr = errors.New("redis down")
	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]schedule.RawSchedule{rajdhaniRaw()}, nil).Once()

	result := f.service.Resolve(context.Background(), delhiMumbai)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Len(t, result.Schedules, 1)
}

func TestResolve_FailedPersistDoesNotInvalidate(t *testing.T) {
	f, lookups := newRecordingFixture()
	f.store.createErr = errors.New("deadlock detected")
	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]schedule.RawSchedule{rajdhaniRaw()}, nil).Once()

	result := f.service.Resolve(context.Background(), delhiMumbai)

	assert.Equal(t, StatusError, result.Status)
	assert.Empty(t, lookups.invalidated)
}

func TestResolve_HitSkipsExtraction(t *testing.T) {
	f := newFixture()
	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]schedule.RawSchedule{rajdhaniRaw()}, nil).Once()

	first := f.service.Resolve(context.Background(), delhiMumbai)
	require.Equal(t, StatusSuccess, first.Status)

	q := delhiMumbai
	q.Origin = "new delhi"
	q.Datetime = "2024-08-11 07:00:00"
	second := f.service.Resolve(context.Background(), q)

	require.Equal(t, StatusSuccess, second.Status)
	assert.Equal(t, SourceDatabase, second.Source)
	assert.Equal(t, "Found 1 schedules from database", second.Message)
	assert.Equal(t, first.Schedules[0].ID, second.Schedules[0].ID)
	f.extractor.AssertNumberOfCalls(t, "Extract", 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Resolutions.WithLabelValues("database", "success")))
}

func TestResolve_OtherDayIsMiss(t *testing.T) {
	f := newFixture()
	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]schedule.RawSchedule{rajdhaniRaw()}, nil).Twice()

	f.service.Resolve(context.Background(), delhiMumbai)
	q := delhiMumbai
	q.Datetime = "2024-08-12"
	result := f.service.Resolve(context.Background(), q)

	assert.Equal(t, SourceScraper, result.Source)
	f.extractor.AssertNumberOfCalls(t, "Extract", 2)
}

func TestResolve_UnimplementedModes(t *testing.T) {
	for _, mode := range []schedule.Mode{schedule.ModeBus, schedule.ModeFlight} {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture()
			q := delhiMumbai
			q.Mode = mode

			result := f.service.Resolve(context.Background(), q)

			assert.Equal(t, StatusError, result.Status)
			assert.Equal(t, string(mode)+" not implemented", result.Message)
			assert.Equal(t, apperror.KindUnsupportedMode, result.Code)
			assert.Equal(t, SourceScraper, result.Source)
			assert.NotNil(t, result.Schedules)
			f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestResolve_ExtractionFailureCarriesReason(t *testing.T) {
	f := newFixture()
	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout waiting for results"))

	result := f.service.Resolve(context.Background(), delhiMumbai)

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, apperror.KindExtractionFailure, result.Code)
	assert.Contains(t, result.Message, "timeout waiting for results")
	assert.Empty(t, f.store.records)
}

func TestResolve_EmptyExtraction(t *testing.T) {
	f := newFixture()
	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]schedule.RawSchedule{}, nil)

	result := f.service.Resolve(context.Background(), delhiMumbai)

	assert.Equal(t, apperror.KindExtractionFailure, result.Code)
	assert.Equal(t, "no schedules found", result.Message)
}

func TestResolve_PersistenceFailure(t *testing.T) {
	f := newFixture()
	f.store.createErr = errors.New("deadlock detected")
	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]schedule.RawSchedule{rajdhaniRaw(), rajdhaniRaw()}, nil)

	result := f.service.Resolve(context.Background(), delhiMumbai)

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, apperror.KindPersistenceFailure, result.Code)
	assert.Empty(t, f.store.records)
	assert.ErrorContains(t, result.Err(), "deadlock detected")
}

func TestResolve_Validation(t *testing.T) {
	tests := map[string]schedule.Query{
		"missing origin": {Mode: schedule.ModeTrain, Destination: "Mumbai", Datetime: "2024-08-11"},
		"missing mode":   {Origin: "Delhi", Destination: "Mumbai", Datetime: "2024-08-11"},
		"unknown mode":   {Mode: "boat", Origin: "Delhi", Destination: "Mumbai", Datetime: "2024-08-11"},
		"malformed date": {Mode: schedule.ModeTrain, Origin: "Delhi", Destination: "Mumbai", Datetime: "no digits here"},
	}
	for name, q := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture()

			result := f.service.Resolve(context.Background(), q)

			assert.Equal(t, StatusError, result.Status)
			assert.Equal(t, apperror.KindValidation, result.Code)
			f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBuildRecord_ArrivalRollsForward(t *testing.T) {
	tests := []struct {
		name      string
		departure string
		arrival   string
		want      time.Time
	}{
		{"same day", "06:00", "14:30", time.Date(2024, 8, 11, 14, 30, 0, 0, time.UTC)},
		{"overnight", "22:10", "05:45", time.Date(2024, 8, 12, 5, 45, 0, 0, time.UTC)},
		{"equal clock", "09:00", "09:00", time.Date(2024, 8, 12, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rajdhaniRaw()
			raw.DepartureTime, raw.ArrivalTime = tt.departure, tt.arrival

			rec, err := buildRecord(delhiMumbai, raw)

			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.ArrivalTime)
			assert.True(t, rec.ArrivalTime.After(rec.DepartureTime))
		})
	}
}

func TestBuildRecord_FallsBackToQueryTerms(t *testing.T) {
	raw := rajdhaniRaw()
	raw.Origin, raw.OriginCode = "", ""

	rec, err := buildRecord(delhiMumbai, raw)

	require.NoError(t, err)
	assert.Equal(t, "Delhi", rec.Origin)
	assert.Empty(t, rec.OriginCode)
}

func TestStationCode(t *testing.T) {
	assert.Equal(t, "NDLS", stationCode(schedule.ModeTrain, " ndls ", "New Delhi"))
	assert.Empty(t, stationCode(schedule.ModeTrain, "", "New Delhi"))
	assert.Equal(t, "BOM", stationCode(schedule.ModeFlight, "", "Mumbai (BOM)"))
}

func TestEndToEnd_ResolveThenBook(t *testing.T) {
	f := newFixture()
	raw := rajdhaniRaw()
	f.extractor.On("Extract", mock.Anything, "Delhi", "Mumbai", "2024-08-11").
		Return([]schedule.RawSchedule{raw}, nil).Once()

	result := f.service.Resolve(context.Background(), delhiMumbai)
	require.Equal(t, StatusSuccess, result.Status, result.Message)
	require.Len(t, result.Schedules, 1)
	assert.Equal(t, "1500", result.Schedules[0].SeatAvailability[0].Price)

	manager := booking.NewManager(newMemBookings(), f.store, nil, events.Nop{}, f.metrics, logger.Nop{})
	resp, err := manager.CreateBooking(context.Background(), booking.CreateRequest{
		UserID:          "u-42",
		ScheduleID:      result.Schedules[0].ID,
		SeatPreferences: booking.SeatPreferences{SeatClass: "3A"},
	})

	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeConfirmed, resp.BookingStatus)
	assert.Equal(t, "Booking confirmed for Mumbai Rajdhani (12952) from New Delhi to Mumbai Central in 3A", resp.Message)
}

// memBookings is the minimal booking.Store the end-to-end test needs.
type memBookings struct {
	records map[string]booking.Record
}

func newMemBookings() *memBookings {
	return &memBookings{records: map[string]booking.Record{}}
}

func (m *memBookings) Create(_ context.Context, r *booking.Record) error {
	m.records[r.ID] = *r
	return nil
}

func (m *memBookings) FindByID(_ context.Context, id string) (*booking.Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return &r, nil
}

func (m *memBookings) ListByUser(context.Context, string) ([]booking.Record, error) {
	return nil, nil
}

func (m *memBookings) Cancel(_ context.Context, id string) (*booking.Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return &r, nil
}
