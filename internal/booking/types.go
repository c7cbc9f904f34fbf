package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"travel/internal/schedule"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusWaitlist  Status = "waitlist"
	StatusRegret    Status = "regret"
	StatusCancelled Status = "cancelled"
)

// SeatPreferences carries the known preference fields plus an open Extra
// map for anything a client sends beyond them.
type SeatPreferences struct {
	SeatClass    string         `json:"seat_class"`
	SeatPosition string         `json:"seat_position,omitempty"`
	Coach        string         `json:"coach,omitempty"`
	SeatNumber   string         `json:"seat_number,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// Record is a persisted booking. Only Status ever changes, and only to
// cancelled.
type Record struct {
	ID              string          `json:"booking_id"`
	UserID          string          `json:"user_id"`
	ScheduleID      int64           `json:"schedule_id,string"`
	Status          Status          `json:"booking_status"`
	SeatPreferences SeatPreferences `json:"seat_preferences"`
	CreatedAt       time.Time       `json:"booking_date"`
}

type CreateRequest struct {
	UserID          string          `json:"user_id" binding:"required"`
	ScheduleID      int64           `json:"schedule_id" binding:"required"`
	SeatPreferences SeatPreferences `json:"seat_preferences"`
}

// UnmarshalJSON accepts schedule_id as a JSON number or as the quoted form
// schedules are served with. null or "" leave it zero so binding rejects it.
func (r *CreateRequest) UnmarshalJSON(data []byte) error {
	type plain CreateRequest
	aux := struct {
		*plain
		ScheduleID json.RawMessage `json:"schedule_id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	raw := bytes.Trim(bytes.TrimSpace(aux.ScheduleID), `"`)
	if len(raw) == 0 || string(raw) == "null" {
		r.ScheduleID = 0
		return nil
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("schedule_id: %q is not an integer id", raw)
	}
	r.ScheduleID = id
	return nil
}

type Response struct {
	BookingID     string  `json:"booking_id"`
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	BookingStatus Outcome `json:"booking_status,omitempty"`
}

type CancelRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

type CancelResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Detail is a booking together with the schedule it was made against. The
// schedule is nil when it no longer exists.
type Detail struct {
	Record
	Schedule *schedule.ScheduleRecord `json:"schedule"`
}

type UserBookings struct {
	UserID   string   `json:"user_id"`
	Bookings []Record `json:"bookings"`
}
