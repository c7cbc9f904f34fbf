package trainclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"travel/internal/normalize"
	"travel/internal/schedule"
	"travel/pkg/logger"
)

// Client talks to the out-of-process train scraper. The scraper returns the
// text of each result card as it appears on the page; Client splits that
// text into RawSchedule fields without normalizing it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Client
}

func NewClient(httpClient *http.Client, baseURL string, log logger.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     log,
	}
}

type searchResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Trains  []trainCard `json:"trains"`
}

// trainCard mirrors one result card. Departure and Arrival hold two lines:
// "NDLS, 16:55\nNew Delhi" and "08:35, MMCT\nMumbai Central".
type trainCard struct {
	Title           string      `json:"title"`
	Departure       string      `json:"departure"`
	Arrival         string      `json:"arrival"`
	DurationHours   string      `json:"duration_hours"`
	DurationMinutes string      `json:"duration_minutes"`
	Journey         string      `json:"journey"`
	Classes         []classCard `json:"classes"`
}

type classCard struct {
	Title  string `json:"title"`
	Status string `json:"status"`
	Price  string `json:"price"`
	Markup string `json:"markup"`
}

func (c *Client) Extract(ctx context.Context, origin, destination, date string) ([]schedule.RawSchedule, error) {
	token, err := normalize.DayMonthToken(date)
	if err != nil {
		return nil, fmt.Errorf("travel date: %w", err)
	}

	q := url.Values{}
	q.Set("from", origin)
	q.Set("to", destination)
	q.Set("date", token)
	endpoint := fmt.Sprintf("%s/railyatri/v1/trains/search?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Error("failed to build train scraper request", logger.Field{Key: "error", Value: err})
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("train scraper call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("train scraper returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var apiResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode train scraper response: %w", err)
	}
	if apiResp.Status != "" && apiResp.Status != "success" {
		return nil, fmt.Errorf("train scraper error: %s", apiResp.Message)
	}

	schedules := make([]schedule.RawSchedule, 0, len(apiResp.Trains))
	for _, card := range apiResp.Trains {
		schedules = append(schedules, mapTrainCard(card))
	}

	c.logger.Debug("train scraper answered",
		logger.Field{Key: "origin", Value: origin},
		logger.Field{Key: "destination", Value: destination},
		logger.Field{Key: "date_token", Value: token},
		logger.Field{Key: "trains", Value: len(schedules)},
	)
	return schedules, nil
}

func mapTrainCard(card trainCard) schedule.RawSchedule {
	raw := schedule.RawSchedule{}

	title := strings.TrimSpace(card.Title)
	if number, name, found := strings.Cut(title, " "); found {
		raw.CarrierID = number
		raw.CarrierName = strings.Trim(strings.TrimSpace(name), `"`)
	} else {
		raw.CarrierName = title
	}

	if first, second, ok := twoLines(card.Departure); ok {
		raw.OriginCode, raw.DepartureTime = normalize.SplitCodeAndTime(first)
		raw.Origin = second
	}
	if first, second, ok := twoLines(card.Arrival); ok {
		raw.ArrivalTime, raw.DestinationCode = normalize.SplitTimeAndCode(first)
		raw.Destination = second
	}

	raw.Duration = strings.TrimSpace(card.DurationHours + " " + card.DurationMinutes)
	raw.Halts, raw.Distance = normalize.SplitHaltsDistance(card.Journey)

	raw.Seats = make([]schedule.RawSeatClass, 0, len(card.Classes))
	for _, class := range card.Classes {
		// Classes still showing the "tap to refresh" placeholder carry no data.
		if strings.Contains(strings.ToLower(class.Markup), "taptorefresh") {
			continue
		}
		name, description := normalize.SplitClassName(class.Title)
		price := strings.TrimSpace(class.Price)
		if price == "" {
			price = "N/A"
		}
		raw.Seats = append(raw.Seats, schedule.RawSeatClass{
			ClassName:        name,
			ClassDescription: description,
			Status:           strings.TrimSpace(class.Status),
			Price:            price,
		})
	}
	return raw
}

func twoLines(text string) (string, string, bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return "", "", false
	}
	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1]), true
}
