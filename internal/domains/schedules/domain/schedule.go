package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted by schedule queries.
const DateLayout = "2006-01-02"

var (
	ErrInvalidTimeOfDay    = errors.New("time must be HH:MM")
	ErrInvalidDate         = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTimezone     = errors.New("timezone is not a valid IANA location")
	ErrInvalidQuota        = errors.New("max quota must be greater than zero")
	ErrInvalidProduct      = errors.New("product is required")
	ErrInvalidBusinessArea = errors.New("business area is required")
	ErrEmptyWindow         = errors.New("start and end time must differ")
	ErrInvalidUnits        = errors.New("quota units must be greater than zero")
	// ErrQuotaExhausted is returned when a reservation exceeds remaining quota.
	ErrQuotaExhausted = errors.New("schedule quota exhausted")
	// ErrQuotaOverflow is returned when a release would exceed max quota.
	ErrQuotaOverflow = errors.New("schedule quota release exceeds max quota")
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (seconds, when present, must be zero).
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil && t.Second() == 0 {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// Template is a recurring daily slot for one product at one business area.
type Template struct {
	ID             int64
	ProductID      int64
	BusinessAreaID int64
	StartTime      TimeOfDay
	EndTime        TimeOfDay
	MaxQuota       int64
	IsActive       bool
}

// CrossesMidnight reports whether the window ends on the following day.
func (t Template) CrossesMidnight() bool {
	return t.EndTime.Minutes() <= t.StartTime.Minutes()
}

// Validate checks the template.
func (t *Template) Validate() error {
	if t.ProductID <= 0 {
		return ErrInvalidProduct
	}
	if t.BusinessAreaID <= 0 {
		return ErrInvalidBusinessArea
	}
	if !t.StartTime.valid() || !t.EndTime.valid() {
		return ErrInvalidTimeOfDay
	}
	if t.StartTime == t.EndTime {
		return ErrEmptyWindow
	}
	if t.MaxQuota <= 0 {
		return ErrInvalidQuota
	}
	return nil
}

// Instantiate builds the concrete schedule for the calendar day of date in loc.
// Wall-clock times that fall in a DST gap are normalized by time.Date.
func (t Template) Instantiate(date time.Time, loc *time.Location) Schedule {
	y, m, d := date.Date()
	start := time.Date(y, m, d, t.StartTime.Hour, t.StartTime.Minute, 0, 0, loc)
	endDay := d
	if t.CrossesMidnight() {
		endDay++
	}
	end := time.Date(y, m, endDay, t.EndTime.Hour, t.EndTime.Minute, 0, 0, loc)
	return Schedule{
		ProductID:      t.ProductID,
		BusinessAreaID: t.BusinessAreaID,
		StartTime:      start.UTC(),
		EndTime:        end.UTC(),
		MaxQuota:       t.MaxQuota,
		RemainingQuota: t.MaxQuota,
	}
}

// Schedule is a concrete bookable time window with a quota.
type Schedule struct {
	ID             int64
	ProductID      int64
	BusinessAreaID int64
	StartTime      time.Time
	EndTime        time.Time
	MaxQuota       int64
	RemainingQuota int64
}

// Booked returns the number of units already reserved.
func (s Schedule) Booked() int64 { return s.MaxQuota - s.RemainingQuota }

// SlotKey identifies a schedule independent of its ID.
type SlotKey struct {
	ProductID      int64
	BusinessAreaID int64
	StartUnix      int64
}

func (s Schedule) SlotKey() SlotKey {
	return SlotKey{ProductID: s.ProductID, BusinessAreaID: s.BusinessAreaID, StartUnix: s.StartTime.Unix()}
}

// Reserve takes n units from the remaining quota.
func (s *Schedule) Reserve(n int64) error {
	if n <= 0 {
		return ErrInvalidUnits
	}
	if s.RemainingQuota < n {
		return ErrQuotaExhausted
	}
	s.RemainingQuota -= n
	return nil
}

// Release returns n units to the remaining quota.
func (s *Schedule) Release(n int64) error {
	if n <= 0 {
		return ErrInvalidUnits
	}
	if s.RemainingQuota+n > s.MaxQuota {
		return ErrQuotaOverflow
	}
	s.RemainingQuota += n
	return nil
}

// LoadLocation resolves an IANA name, using fallback when name is blank.
func LoadLocation(name, fallback string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

// DayBounds returns [local midnight of date, local midnight of the next day)
// in UTC. AddDate keeps the bounds right on 23h and 25h DST days.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return day.UTC(), day.AddDate(0, 0, 1).UTC(), nil
}
