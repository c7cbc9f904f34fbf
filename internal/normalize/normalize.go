// Package normalize turns the loosely formatted text scraped from carrier
// pages into canonical values. Every function here is pure.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
)

var ErrMalformedDate = errors.New("malformed date")

var (
	digitRun      = regexp.MustCompile(`[0-9]+`)
	priceStripper = strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", "INR", "", "$", "", "€", "", "£", "", ",", "")
)

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"15:04:05.999999999",
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
}

// parseDate extracts a calendar date from free text. Results are in UTC
// unless the text carries its own offset.
func parseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrMalformedDate)
	}
	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrMalformedDate, text, err)
	}
	return t, nil
}

// ParseQueryDate returns the inclusive boundaries of the calendar day named
// by text: 00:00:00.000000 and 23:59:59.999999.
func ParseQueryDate(text string) (time.Time, time.Time, error) {
	t, err := parseDate(text)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, d, 23, 59, 59, 999999000, t.Location())
	return start, end, nil
}

// parseClock reads a clock time, ignoring any date the text may carry.
func parseClock(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	upper := strings.ToUpper(text)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return t, true
		}
	}
	if t, err := dateparse.ParseIn(text, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// CombineTimeWithDate places the clock time from timeText on the calendar day
// of baseDateText. An unparseable clock yields midnight of the base day; an
// unparseable base date yields the zero time.
func CombineTimeWithDate(timeText, baseDateText string) time.Time {
	base, err := parseDate(baseDateText)
	if err != nil {
		return time.Time{}
	}
	y, m, d := base.Date()

	clock, ok := parseClock(timeText)
	if !ok {
		return time.Date(y, m, d, 0, 0, 0, 0, base.Location())
	}
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), base.Location())
}

// NormalizeAirportCode extracts a three letter code from "DEL - New Delhi",
// "Mumbai (BOM)" or "BOM". Anything else falls back to the first three
// characters upper-cased, and empty input to "UNK".
func NormalizeAirportCode(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "UNK"
	}

	if before, _, found := strings.Cut(text, " - "); found {
		if code := strings.TrimSpace(before); code != "" {
			return strings.ToUpper(code)
		}
	}

	open, closing := strings.Index(text, "("), strings.Index(text, ")")
	if open >= 0 && closing > open {
		if code := strings.TrimSpace(text[open+1 : closing]); code != "" {
			return strings.ToUpper(code)
		}
	}

	if len(text) == 3 && text == strings.ToUpper(text) {
		return text
	}

	if utf8.RuneCountInString(text) <= 3 {
		return strings.ToUpper(text)
	}
	return strings.ToUpper(string([]rune(text)[:3]))
}

// CleanPriceText keeps the first run of digits once currency symbols and
// thousands separators are gone. "₹1,234 Extra ₹500 Off" -> "1234".
func CleanPriceText(text string) string {
	cleaned := priceStripper.Replace(text)
	if match := digitRun.FindString(cleaned); match != "" {
		return match
	}
	return "0"
}

// SplitCodeAndTime splits the departure cell "NDLS, 16:55" into code and time.
func SplitCodeAndTime(text string) (code, clock string) {
	first, second, ok := splitPair(text)
	if !ok {
		return "", strings.TrimSpace(text)
	}
	return first, second
}

// SplitTimeAndCode splits the arrival cell "06:10, BCT" into time and code.
func SplitTimeAndCode(text string) (clock, code string) {
	first, second, ok := splitPair(text)
	if !ok {
		return strings.TrimSpace(text), ""
	}
	return first, second
}

func splitPair(text string) (string, string, bool) {
	first, second, found := strings.Cut(text, ",")
	if !found {
		return "", "", false
	}
	if rest, _, more := strings.Cut(second, ","); more {
		second = rest
	}
	return strings.TrimSpace(first), strings.TrimSpace(second), true
}

// SplitClassName splits "3A (AC 3 Tier)" into ("3A", "AC 3 Tier").
func SplitClassName(text string) (name, description string) {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "(") || !strings.Contains(text, ")") {
		return text, ""
	}
	parts := strings.Split(text, "(")
	name = strings.TrimSpace(parts[0])
	description = strings.TrimSpace(strings.ReplaceAll(parts[1], ")", ""))
	return name, description
}

// SplitHaltsDistance splits "5 halts | 1384 km".
func SplitHaltsDistance(text string) (halts, distance string) {
	before, after, found := strings.Cut(text, "|")
	if !found {
		return "", ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// DayMonthToken renders the carrier date strip token: "2024-08-11" -> "11Aug".
func DayMonthToken(text string) (string, error) {
	t, err := parseDate(text)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d%s", t.Day(), t.Format("Jan")), nil
}
