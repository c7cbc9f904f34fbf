package availability

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"travel/internal/schedule"
	"travel/pkg/idgen"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, origin, destination, date string) ([]schedule.RawSchedule, error) {
	args := m.Called(ctx, origin, destination, date)
	raws, _ := args.Get(0).([]schedule.RawSchedule)
	return raws, args.Error(1)
}

// memStore is an in-memory schedule.Store with the same matching rules as
// the Postgres store.
type memStore struct {
	mu        sync.Mutex
	ids       *idgen.Sequence
	records   []schedule.ScheduleRecord
	createErr error
}

func newMemStore() *memStore {
	return &memStore{ids: idgen.NewSequence(1)}
}

func (m *memStore) CreateBatch(_ context.Context, records []*schedule.ScheduleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, rec := range records {
		rec.ID = m.ids.GenerateID()
		for i := range rec.SeatAvailability {
			rec.SeatAvailability[i].ID = m.ids.GenerateID()
			rec.SeatAvailability[i].ScheduleID = rec.ID
		}
		m.records = append(m.records, *rec)
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (m *memStore) Search(_ context.Context, c schedule.SearchCriteria) ([]schedule.ScheduleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []schedule.ScheduleRecord
	for _, r := range m.records {
		if r.Mode != c.Mode {
			continue
		}
		if !containsFold(r.OriginQuery, c.Origin) && !containsFold(r.Origin, c.Origin) {
			continue
		}
		if !containsFold(r.DestinationQuery, c.Destination) && !containsFold(r.Destination, c.Destination) {
			continue
		}
		if r.DepartureTime.Before(c.From) || r.DepartureTime.After(c.To) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (*schedule.ScheduleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, schedule.ErrNotFound
}

func (m *memStore) FindSeatClass(_ context.Context, scheduleID int64, className string) (*schedule.SeatClassAvailability, error) {
	rec, err := m.FindByID(context.Background(), scheduleID)
	if err != nil {
		return nil, nil
	}
	for _, seat := range rec.SeatAvailability {
		if strings.EqualFold(seat.ClassName, className) {
			return &seat, nil
		}
	}
	return nil, nil
}

// recordingLookuper counts Invalidate calls on top of a real resolver.
type recordingLookuper struct {
	*schedule.Resolver
	invalidated   []schedule.Query
	invalidateErr error
}

func (r *recordingLookuper) Invalidate(ctx context.Context, q schedule.Query) error {
	r.invalidated = append(r.invalidated, q)
	if r.invalidateErr != nil {
		return r.invalidateErr
	}
	return r.Resolver.Invalidate(ctx, q)
}

func rajdhaniRaw() schedule.RawSchedule {
	return schedule.RawSchedule{
		CarrierID:       "12952",
		CarrierName:     "Mumbai Rajdhani",
		Origin:          "New Delhi",
		OriginCode:      "ndls",
		Destination:     "Mumbai Central",
		DestinationCode: "MMCT",
		DepartureTime:   "16:55",
		ArrivalTime:     "08:35",
		Duration:        "15h 40m",
		Distance:        "1384 km",
		Halts:           "5 halts",
		Seats: []schedule.RawSeatClass{
			{ClassName: "3A", ClassDescription: "AC 3 Tier", Status: "Available", Price: "₹1,500"},
			{ClassName: "2A", ClassDescription: "AC 2 Tier", Status: "WL 12", Price: "N/A"},
		},
	}
}
