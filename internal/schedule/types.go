package schedule

import (
	"strings"
	"time"
)

type Mode string

const (
	ModeTrain  Mode = "train"
	ModeBus    Mode = "bus"
	ModeFlight Mode = "flight"
)

// SupportedModes lists every mode the API accepts; only ImplementedModes can
// be extracted on a cache miss.
var (
	SupportedModes   = []Mode{ModeTrain, ModeBus, ModeFlight}
	ImplementedModes = []Mode{ModeTrain}
)

func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, supported := range SupportedModes {
		if m == supported {
			return m, true
		}
	}
	return "", false
}

func (m Mode) Implemented() bool {
	for _, implemented := range ImplementedModes {
		if m == implemented {
			return true
		}
	}
	return false
}

// Query is one travel search as received from the caller.
type Query struct {
	Mode        Mode   `json:"mode"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Datetime    string `json:"datetime"`
}

// ScheduleRecord is a persisted carrier run. OriginQuery and DestinationQuery
// keep the caller's search terms next to the carrier-reported names.
type ScheduleRecord struct {
	ID               int64                   `json:"id,string"`
	Mode             Mode                    `json:"transport_mode"`
	CarrierID        string                  `json:"transport_id"`
	CarrierName      string                  `json:"transport_name"`
	Origin           string                  `json:"origin"`
	OriginCode       string                  `json:"origin_code,omitempty"`
	Destination      string                  `json:"destination"`
	DestinationCode  string                  `json:"destination_code,omitempty"`
	DepartureTime    time.Time               `json:"departure_time"`
	ArrivalTime      time.Time               `json:"arrival_time"`
	Duration         string                  `json:"duration"`
	Distance         string                  `json:"distance,omitempty"`
	Halts            string                  `json:"halts,omitempty"`
	OriginQuery      string                  `json:"origin_query,omitempty"`
	DestinationQuery string                  `json:"destination_query,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	SeatAvailability []SeatClassAvailability `json:"seat_availability"`
}

// SeatClassAvailability is one fare/class row. Status and Price stay raw text.
type SeatClassAvailability struct {
	ID               int64  `json:"id,string"`
	ScheduleID       int64  `json:"schedule_id,string"`
	ClassName        string `json:"class_name"`
	ClassDescription string `json:"class_description,omitempty"`
	Status           string `json:"status"`
	Price            string `json:"price"`
}

// RawSchedule is what an extraction source hands back, before normalization.
type RawSchedule struct {
	CarrierID       string         `json:"transport_id"`
	CarrierName     string         `json:"transport_name"`
	Origin          string         `json:"origin"`
	OriginCode      string         `json:"origin_code"`
	Destination     string         `json:"destination"`
	DestinationCode string         `json:"destination_code"`
	DepartureTime   string         `json:"departure_time"`
	ArrivalTime     string         `json:"arrival_time"`
	Duration        string         `json:"duration"`
	Distance        string         `json:"distance"`
	Halts           string         `json:"halts"`
	Seats           []RawSeatClass `json:"seat_availability"`
}

type RawSeatClass struct {
	ClassName        string `json:"class_name"`
	ClassDescription string `json:"class_description"`
	Status           string `json:"status"`
	Price            string `json:"price"`
}

// SearchCriteria is the store-level form of a Query.
type SearchCriteria struct {
	Mode        Mode
	Origin      string
	Destination string
	From        time.Time
	To          time.Time
}
