package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// TestParseLatitude verifies numeric parsing and the [-90, 90] bound.
func TestParseLatitude(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr error
	}{
		{name: "valid", raw: "23.8103", want: 23.8103},
		{name: "boundary north", raw: "90", want: 90},
		{name: "boundary south", raw: "-90", want: -90},
		{name: "with spaces", raw: " 12.5 ", want: 12.5},
		{name: "too far north", raw: "90.1", wantErr: ErrLatitudeOutOfRange},
		{name: "too far south", raw: "-91", wantErr: ErrLatitudeOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLatitude(tc.raw)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ParseLatitude(%q) error = %v, want %v", tc.raw, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLatitude(%q) error = %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("ParseLatitude(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}

	if _, err := ParseLatitude("north"); err == nil {
		t.Error("ParseLatitude(north) error = nil, want parse error")
	}
}

// TestParseLongitude verifies numeric parsing and the [-180, 180] bound.
func TestParseLongitude(t *testing.T) {
	if got, err := ParseLongitude("90.4125"); err != nil || got != 90.4125 {
		t.Errorf("ParseLongitude(90.4125) = %v, %v", got, err)
	}
	if _, err := ParseLongitude("180.5"); !errors.Is(err, ErrLongitudeOutOfRange) {
		t.Errorf("ParseLongitude(180.5) error = %v, want ErrLongitudeOutOfRange", err)
	}
	if _, err := ParseLongitude("-181"); !errors.Is(err, ErrLongitudeOutOfRange) {
		t.Errorf("ParseLongitude(-181) error = %v, want ErrLongitudeOutOfRange", err)
	}
	if _, err := ParseLongitude(""); err == nil {
		t.Error("ParseLongitude(\"\") error = nil, want parse error")
	}
}

// TestValidateDestinationName verifies trimming and length bounds.
func TestValidateDestinationName(t *testing.T) {
	got, err := ValidateDestinationName("  Sylhet  ")
	if err != nil {
		t.Fatalf("ValidateDestinationName() error = %v", err)
	}
	if got != "Sylhet" {
		t.Errorf("ValidateDestinationName() = %q, want Sylhet", got)
	}

	if _, err := ValidateDestinationName("   "); !errors.Is(err, ErrNameEmpty) {
		t.Errorf("blank name error = %v, want ErrNameEmpty", err)
	}

	long := strings.Repeat("x", 256)
	if _, err := ValidateDestinationName(long); !errors.Is(err, ErrNameTooLong) {
		t.Errorf("256-char name error = %v, want ErrNameTooLong", err)
	}

	exact := strings.Repeat("x", 255)
	if _, err := ValidateDestinationName(exact); err != nil {
		t.Errorf("255-char name error = %v, want nil", err)
	}
}

// TestParseLimit verifies the default on empty input and rejection of
// out-of-range values.
func TestParseLimit(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "empty uses default", raw: "", want: 10},
		{name: "whitespace uses default", raw: "  ", want: 10},
		{name: "valid", raw: "5", want: 5},
		{name: "min", raw: "1", want: 1},
		{name: "max", raw: "64", want: 64},
		{name: "zero rejected", raw: "0", wantErr: true},
		{name: "above max rejected", raw: "65", wantErr: true},
		{name: "not a number", raw: "ten", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLimit(tc.raw, 10, 1, 64)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseLimit(%q) error = nil, want error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLimit(%q) error = %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("ParseLimit(%q) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

// TestParseTravelDate verifies the inclusive [today, today+7] window.
func TestParseTravelDate(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 9, 3, 15, 30, 0, 0, loc)

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "today", raw: "2025-09-03"},
		{name: "tomorrow", raw: "2025-09-04"},
		{name: "window edge", raw: "2025-09-10"},
		{name: "yesterday", raw: "2025-09-02", wantErr: ErrDateInPast},
		{name: "beyond window", raw: "2025-09-11", wantErr: ErrDateTooFar},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTravelDate(tc.raw, now, loc)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ParseTravelDate(%q) error = %v, want %v", tc.raw, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTravelDate(%q) error = %v", tc.raw, err)
			}
			if got.Format("2006-01-02") != tc.raw {
				t.Errorf("ParseTravelDate(%q) = %s", tc.raw, got.Format("2006-01-02"))
			}
		})
	}

	if _, err := ParseTravelDate("03/09/2025", now, loc); err == nil {
		t.Error("ParseTravelDate(03/09/2025) error = nil, want format error")
	}
}
