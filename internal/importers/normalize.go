package importers

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/ir-contacts/internal/config"
	"github.com/mrlokans/ir-contacts/internal/entities"
)

// excelEpoch is the base of the 1900 date system. Excel counts day 1 as
// 1900-01-01 and wrongly treats 1900 as a leap year, so serials at or beyond
// March 1900 line up with 1899-12-30 plus the serial in days.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Normalizer turns raw cell values into canonical field values. Both
// normalizers are total: unrecognized input degrades to nil, never to an
// error.
type Normalizer struct {
	// Bare numbers inside [SerialMin, SerialMax] are read as spreadsheet
	// date serials even when they arrive as text.
	SerialMin float64
	SerialMax float64
}

// NewNormalizer builds a normalizer with the configured serial-date bounds.
func NewNormalizer(cfg config.Import) *Normalizer {
	n := &Normalizer{SerialMin: cfg.SerialMin, SerialMax: cfg.SerialMax}
	if n.SerialMin <= 0 || n.SerialMax <= n.SerialMin {
		n.SerialMin = config.DefaultSerialMin
		n.SerialMax = config.DefaultSerialMax
	}
	return n
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02.01.2006",
	time.RFC3339,
}

// Date converts a raw cell into a calendar date, or nil when the value has
// no recognizable date shape.
func (n *Normalizer) Date(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial < n.SerialMin || serial > n.SerialMax {
			return nil
		}
		return n.fromSerial(serial)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &date
		}
	}
	return nil
}

func (n *Normalizer) fromSerial(serial float64) *time.Time {
	days := math.Floor(serial)
	t := excelEpoch.AddDate(0, 0, int(days))
	return &t
}

// prioritySentinels are cell values that explicitly mean "no priority".
var prioritySentinels = map[string]bool{
	"":    true,
	"-":   true,
	"n/a": true,
	"na":  true,
}

// Priority converts a raw cell into a priority in [1,5], or nil. Values
// outside the range are discarded, never clamped.
func (n *Normalizer) Priority(value string) *int {
	value = strings.TrimSpace(value)
	if prioritySentinels[strings.ToLower(value)] {
		return nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		// Numeric cells can surface as floats ("3.0"); accept whole values
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil || f != math.Trunc(f) {
			return nil
		}
		parsed = int(f)
	}

	if parsed < entities.PriorityMin || parsed > entities.PriorityMax {
		return nil
	}
	return &parsed
}

// FormatDate renders a calendar date the way it appears in exports.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
