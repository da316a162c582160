package clock

import (
	"fmt"
	"sync"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
	TimeLayout  = "15:04"
)

// Clock is the single source of "now" for the attendance core.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by the host wall clock.
func System() Clock {
	return systemClock{}
}

// Fixed is a settable Clock used by tests.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// BusinessDay resolves calendar dates in one fixed business timezone.
// The host process's local zone is never consulted.
type BusinessDay struct {
	clock Clock
	loc   *time.Location
}

func NewBusinessDay(c Clock, loc *time.Location) *BusinessDay {
	if loc == nil {
		loc = time.UTC
	}
	return &BusinessDay{clock: c, loc: loc}
}

// LoadLocation resolves a zone name, accepting fixed offsets such as "+05:30".
func LoadLocation(name string) (*time.Location, error) {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc, nil
	}
	t, err := time.Parse("-07:00", name)
	if err != nil {
		return nil, fmt.Errorf("unknown business timezone %q", name)
	}
	_, offset := t.Zone()
	return time.FixedZone(name, offset), nil
}

func (b *BusinessDay) Location() *time.Location {
	return b.loc
}

// Now returns the current instant expressed in the business timezone.
func (b *BusinessDay) Now() time.Time {
	return b.clock.Now().In(b.loc)
}

func (b *BusinessDay) Today() string {
	return b.DateOf(b.clock.Now())
}

func (b *BusinessDay) Yesterday() string {
	return b.Now().AddDate(0, 0, -1).Format(DateLayout)
}

// MonthKey is the quota window key (YYYY-MM) for the current business month.
func (b *BusinessDay) MonthKey() string {
	return b.Now().Format(MonthLayout)
}

func (b *BusinessDay) DateOf(t time.Time) string {
	return t.In(b.loc).Format(DateLayout)
}

// PreviousDate returns the calendar date before date.
func (b *BusinessDay) PreviousDate(date string) (string, error) {
	d, err := time.ParseInLocation(DateLayout, date, b.loc)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, -1).Format(DateLayout), nil
}

// Weekday returns the weekday of a business date.
func (b *BusinessDay) Weekday(date string) (time.Weekday, error) {
	d, err := time.ParseInLocation(DateLayout, date, b.loc)
	if err != nil {
		return 0, err
	}
	return d.Weekday(), nil
}

// At combines a business date and an HH:MM time of day into an instant.
func (b *BusinessDay) At(date, hhmm string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, b.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	tod, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", hhmm, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, b.loc), nil
}
