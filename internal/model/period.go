package model

import (
	"fmt"
	"math"
)

const (
	SecondsPerDay    = 24 * 3600
	SecondsPerPeriod = SecondsPerDay / NumPeriods
	NumPeriods       = 4
)

// Period is one of the four fixed quartiles of the day.
type Period int

const (
	Night     Period = iota // 00:00-06:00
	Morning                 // 06:00-12:00
	Afternoon               // 12:00-18:00
	Evening                 // 18:00-24:00
)

// Periods lists every period in calendar order.
var Periods = [NumPeriods]Period{Night, Morning, Afternoon, Evening}

var periodNames = [NumPeriods]string{"Night", "Morning", "Afternoon", "Evening"}

func (p Period) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Period(%d)", int(p))
	}
	return periodNames[p]
}

func (p Period) Valid() bool {
	return p >= Night && p <= Evening
}

// Start is the period's first second of the day (inclusive).
func (p Period) Start() float64 {
	return float64(int(p) * SecondsPerPeriod)
}

// End is the period's last second of the day (exclusive).
func (p Period) End() float64 {
	return p.Start() + SecondsPerPeriod
}

// Duration is the period's length in seconds. All quartiles are equal.
func (p Period) Duration() float64 {
	return SecondsPerPeriod
}

func (p Period) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid period %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(b []byte) error {
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePeriod resolves a wire name ("Night", "Morning", ...) to a Period.
func ParsePeriod(name string) (Period, error) {
	for i, n := range periodNames {
		if n == name {
			return Period(i), nil
		}
	}
	return 0, Errorf(InvalidInput, "", "unknown period %q", name)
}

// PeriodAt returns the period owning offset seconds since midnight.
// Boundaries belong to the period that starts there.
func PeriodAt(offset float64) (Period, error) {
	if math.IsNaN(offset) || offset < 0 || offset >= SecondsPerDay {
		return 0, Errorf(InvalidInput, "", "offset %v outside [0, %d)", offset, SecondsPerDay)
	}
	return Period(int(offset) / SecondsPerPeriod), nil
}
