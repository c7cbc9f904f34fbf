package booking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"travel/internal/schedule"
	"travel/pkg/events"
)

type memBookings struct {
	mu        sync.Mutex
	records   map[string]Record
	createErr error
}

func newMemBookings() *memBookings {
	return &memBookings{records: map[string]Record{}}
}

func (m *memBookings) Create(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.records[r.ID] = *r
	return nil
}

func (m *memBookings) FindByID(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *memBookings) ListByUser(_ context.Context, userID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Record{}
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memBookings) Cancel(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	before := r
	r.Status = StatusCancelled
	m.records[id] = r
	return &before, nil
}

type memSchedules struct {
	schedule.Store
	records map[int64]schedule.ScheduleRecord
	findErr error
}

func newMemSchedules(recs ...schedule.ScheduleRecord) *memSchedules {
	m := &memSchedules{records: map[int64]schedule.ScheduleRecord{}}
	for _, r := range recs {
		m.records[r.ID] = r
	}
	return m
}

func (m *memSchedules) FindByID(_ context.Context, id int64) (*schedule.ScheduleRecord, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	r, ok := m.records[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return &r, nil
}

func (m *memSchedules) FindSeatClass(_ context.Context, scheduleID int64, className string) (*schedule.SeatClassAvailability, error) {
	r, ok := m.records[scheduleID]
	if !ok {
		return nil, nil
	}
	for _, seat := range r.SeatAvailability {
		if strings.EqualFold(seat.ClassName, className) {
			return &seat, nil
		}
	}
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
	err    error
}

func (p *recordingPublisher) PublishBooking(_ context.Context, e events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

var errBoom = errors.New("boom")

func rajdhani() schedule.ScheduleRecord {
	return schedule.ScheduleRecord{
		ID:          7,
		Mode:        schedule.ModeTrain,
		CarrierID:   "12952",
		CarrierName: "Mumbai Rajdhani",
		Origin:      "New Delhi",
		Destination: "Mumbai Central",
		SeatAvailability: []schedule.SeatClassAvailability{
			{ID: 70, ScheduleID: 7, ClassName: "3A", Status: "3 Available", Price: "1500"},
			{ID: 71, ScheduleID: 7, ClassName: "2A", Status: "WL 12", Price: "2450"},
			{ID: 72, ScheduleID: 7, ClassName: "1A", Status: "Regret", Price: "4100"},
		},
	}
}
