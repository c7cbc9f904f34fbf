package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"
)

type TrainSearchResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Trains  []TrainCard `json:"trains"`
}

// TrainCard keeps the two-line departure/arrival text the scraper reads off
// each result card.
type TrainCard struct {
	Title           string      `json:"title"`
	Departure       string      `json:"departure"`
	Arrival         string      `json:"arrival"`
	DurationHours   string      `json:"duration_hours"`
	DurationMinutes string      `json:"duration_minutes"`
	Journey         string      `json:"journey"`
	RunsOn          []string    `json:"runs_on,omitempty"`
	Classes         []ClassCard `json:"classes"`
}

type ClassCard struct {
	Title  string `json:"title"`
	Status string `json:"status"`
	Price  string `json:"price"`
	Markup string `json:"markup,omitempty"`
}

func RailYatriSearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	date := strings.TrimSpace(r.URL.Query().Get("date")) // e.g. 11Aug
	if from == "" || to == "" || date == "" {
		writeTrains(w, http.StatusBadRequest, TrainSearchResponse{Status: "error", Message: "from, to and date are required"})
		return
	}

	data, err := os.ReadFile("mock/files/railyatri_search_response.json")
	if err != nil {
		http.Error(w, "Failed to read train data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var fileResponse TrainSearchResponse
	if err := json.Unmarshal(data, &fileResponse); err != nil {
		http.Error(w, "Failed to parse train data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	day := dayOfToken(date)
	filtered := make([]TrainCard, 0)
	for _, t := range fileResponse.Trains {
		if !matchesStation(t.Departure, from) || !matchesStation(t.Arrival, to) {
			continue
		}
		if day != "" && len(t.RunsOn) > 0 && !containsFold(t.RunsOn, day) {
			continue
		}
		filtered = append(filtered, t)
	}

	// Scraping a real page is slow.
	delay := 200 + rand.Intn(301)
	time.Sleep(time.Duration(delay) * time.Millisecond)

	writeTrains(w, http.StatusOK, TrainSearchResponse{Status: "success", Trains: filtered})
}

func writeTrains(w http.ResponseWriter, code int, body TrainSearchResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// matchesStation accepts either the station code or the city name printed on
// the card.
func matchesStation(cardText, term string) bool {
	return strings.Contains(strings.ToLower(cardText), strings.ToLower(term))
}

// dayOfToken turns "11Aug" into the weekday of that date in the current year.
func dayOfToken(token string) string {
	t, err := time.Parse("2Jan", token)
	if err != nil {
		return ""
	}
	return time.Date(time.Now().Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Weekday().String()[:3]
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
