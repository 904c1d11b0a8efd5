package accounting

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	_ "time/tzdata"
)

// =============================================================================
// DATE - Calendar date with day granularity
// =============================================================================

// Date is a calendar date. Constructors store midnight UTC. Every
// comparison and day difference normalizes first, so a Date built from a
// non-midnight Time still behaves as its calendar day.
type Date struct {
	Time time.Time
}

// DateLayout is the wire format for dates (ISO-8601 calendar date).
const DateLayout = "2006-01-02"

// DisplayLayout is the Polish locale date format used for display.
const DisplayLayout = "02.01.2006"

// DefaultCalendarZone is the zone timestamps are read in unless
// SetCalendarZone says otherwise.
const DefaultCalendarZone = "Europe/Warsaw"

var calendarZone atomic.Pointer[time.Location]

func init() {
	loc, err := time.LoadLocation(DefaultCalendarZone)
	if err != nil {
		loc = time.UTC
	}
	calendarZone.Store(loc)
}

// SetCalendarZone sets the zone in which RFC 3339 timestamps are turned
// into calendar dates. It should be the zone the dates were picked in.
func SetCalendarZone(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	calendarZone.Store(loc)
}

// CalendarZone returns the zone set by SetCalendarZone.
func CalendarZone() *time.Location { return calendarZone.Load() }

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf takes the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now().In(CalendarZone())) }

// ParseDate accepts a plain calendar date or a full RFC 3339 timestamp
// (the form browsers serialize Date values to). Plain dates are taken as
// written; timestamps are converted to the calendar zone first.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t.In(CalendarZone())), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseOptionalDate maps an empty string to nil.
func ParseOptionalDate(s string) (*Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Ptr returns a pointer to a copy of d.
func (d Date) Ptr() *Date { return &d }

// Comparison
func (d Date) Before(other Date) bool        { return d.dayNumber() < other.dayNumber() }
func (d Date) After(other Date) bool         { return d.dayNumber() > other.dayNumber() }
func (d Date) Equal(other Date) bool         { return d.dayNumber() == other.dayNumber() }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

func (d Date) normalize() time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// dayNumber counts days since the Unix epoch.
func (d Date) dayNumber() int64 {
	return d.normalize().Unix() / secondsPerDay
}

const secondsPerDay = 24 * 60 * 60

// Arithmetic
func (d Date) AddDays(n int) Date {
	y, m, day := d.Time.Date()
	return NewDate(y, m, day+n)
}

// AddMonths moves by whole calendar months, clamping the day to the last
// day of the target month (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Time.Year(), d.Time.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Time.Day()
	if day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }
func (d Date) String() string    { return d.normalize().Format(DateLayout) }
func (d Date) Display() string   { return d.normalize().Format(DisplayLayout) }

// DaysBetween returns the number of calendar days from -> to.
func DaysBetween(from, to Date) int {
	return int(to.dayNumber() - from.dayNumber())
}

// InclusiveDays counts both endpoints: [Jan 1, Jan 1] is one day.
func InclusiveDays(from, to Date) int {
	return DaysBetween(from, to) + 1
}

// =============================================================================
// JSON
// =============================================================================

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
