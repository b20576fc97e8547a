// Package validation rejects malformed boundary input before any core logic
// runs. Errors name the violated constraint and map to 400 responses.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrLatitudeOutOfRange is returned when latitude is outside [-90, 90].
var ErrLatitudeOutOfRange = errors.New("latitude must be between -90 and 90")

// ErrLongitudeOutOfRange is returned when longitude is outside [-180, 180].
var ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")

// ErrNameEmpty is returned when a destination name is empty after trim.
var ErrNameEmpty = errors.New("destination name is required")

// ErrNameTooLong is returned when a destination name exceeds 255 characters.
var ErrNameTooLong = errors.New("destination name too long")

// ErrDateInPast is returned when the travel date is before today.
var ErrDateInPast = errors.New("travel date cannot be in the past")

// ErrDateTooFar is returned when the travel date is beyond today+7 days.
var ErrDateTooFar = errors.New("travel date must be within the next 7 days")

// maxNameLen bounds destination names in runes.
const maxNameLen = 255

// travelWindowDays is the inclusive forward window for travel dates.
const travelWindowDays = 7

// ParseLatitude parses and bounds-checks a latitude query value.
func ParseLatitude(raw string) (float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("latitude: %w", errInvalidNumber(raw))
	}
	if lat < -90 || lat > 90 {
		return 0, ErrLatitudeOutOfRange
	}
	return lat, nil
}

// ParseLongitude parses and bounds-checks a longitude query value.
func ParseLongitude(raw string) (float64, error) {
	lon, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("longitude: %w", errInvalidNumber(raw))
	}
	if lon < -180 || lon > 180 {
		return 0, ErrLongitudeOutOfRange
	}
	return lon, nil
}

// ValidateDestinationName trims the input and enforces length bounds.
// Normalization (case-folding) is left to the directory.
func ValidateDestinationName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrNameEmpty
	}
	if len([]rune(name)) > maxNameLen {
		return "", ErrNameTooLong
	}
	return name, nil
}

// ParseLimit parses the best-districts limit. Empty input yields def; values
// outside [min, max] are rejected.
func ParseLimit(raw string, def, min, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("limit: %w", errInvalidNumber(raw))
	}
	if limit < min || limit > max {
		return 0, fmt.Errorf("limit must be between %d and %d", min, max)
	}
	return limit, nil
}

// ParseTravelDate parses a YYYY-MM-DD date and enforces the inclusive
// [today, today+7 days] window, evaluated in loc.
func ParseTravelDate(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("travel_date must be a valid YYYY-MM-DD date")
	}

	today := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	if parsed.Before(today) {
		return time.Time{}, ErrDateInPast
	}
	if parsed.After(today.AddDate(0, 0, travelWindowDays)) {
		return time.Time{}, ErrDateTooFar
	}
	return parsed, nil
}

func errInvalidNumber(raw string) error {
	return fmt.Errorf("invalid number %q", strings.TrimSpace(raw))
}
