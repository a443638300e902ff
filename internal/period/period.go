// Package period resolves named and custom time filters into inclusive
// day ranges and computes the period immediately preceding a range.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finboard/internal/core"
)

// Filter kinds.
const (
	All    Kind = "all"
	Day    Kind = "day"
	Week   Kind = "week"
	Month  Kind = "month"
	Year   Kind = "year"
	Custom Kind = "custom"
)

// Units describe how a range was derived; they drive Previous.
const (
	UnitDays Unit = iota
	UnitMonth
	UnitYear
)

type (
	Kind string
	Unit int

	// Filter is a time filter. Start and End are only read for Custom and
	// either may be nil for a one-sided filter.
	Filter struct {
		Kind  Kind
		Start *core.Date
		End   *core.Date
	}

	// Range is an inclusive, day-aligned interval. A nil bound is open.
	Range struct {
		Start *core.Date `json:"start,omitempty"`
		End   *core.Date `json:"end,omitempty"`
		Unit  Unit       `json:"-"`
	}
)

var ErrInvalidFilter = errors.New("invalid time filter")

// ParseFilter builds a Filter from query-string style values. Empty kind
// means All. Custom bounds use the same date formats as statements.
func ParseFilter(kind, start, end string) (Filter, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(kind)))
	if k == "" {
		k = All
	}
	switch k {
	case All, Day, Week, Month, Year:
		return Filter{Kind: k}, nil
	case Custom:
	default:
		return Filter{}, fmt.Errorf("%w: unknown period %q", ErrInvalidFilter, kind)
	}

	f := Filter{Kind: Custom}
	if s := strings.TrimSpace(start); s != "" {
		d, ok := core.ParseDate(s)
		if !ok {
			return Filter{}, fmt.Errorf("%w: bad start %q", ErrInvalidFilter, start)
		}
		f.Start = &d
	}
	if e := strings.TrimSpace(end); e != "" {
		d, ok := core.ParseDate(e)
		if !ok {
			return Filter{}, fmt.Errorf("%w: bad end %q", ErrInvalidFilter, end)
		}
		f.End = &d
	}
	return f, nil
}

// Resolve computes the range of f relative to now. The boolean is false for
// All, meaning no filtering is applied.
func Resolve(f Filter, now time.Time) (Range, bool) {
	today := core.DateOf(now)
	switch f.Kind {
	case Day:
		return closed(today, today, UnitDays), true
	case Week:
		start := today.AddDays(-int(today.Weekday()))
		return closed(start, start.AddDays(6), UnitDays), true
	case Month:
		start := core.NewDate(today.Year(), today.Month(), 1)
		return closed(start, lastOfMonth(start), UnitMonth), true
	case Year:
		return closed(core.NewDate(today.Year(), 1, 1), core.NewDate(today.Year(), 12, 31), UnitYear), true
	case Custom:
		if f.Start == nil && f.End == nil {
			return Range{}, false
		}
		return Range{Start: f.Start, End: f.End, Unit: UnitDays}, true
	default:
		return Range{}, false
	}
}

// PreviousPeriod resolves f and returns the range immediately before it.
func PreviousPeriod(f Filter, now time.Time) (Range, bool) {
	r, ok := Resolve(f, now)
	if !ok {
		return Range{}, false
	}
	return r.Previous()
}

// Previous returns the period of the same length ending the day before r
// starts. Calendar months and years step back to the whole previous month
// or year. It reports false when either bound is open.
func (r Range) Previous() (Range, bool) {
	if r.Start == nil || r.End == nil {
		return Range{}, false
	}
	start, end := *r.Start, *r.End
	switch r.Unit {
	case UnitMonth:
		prev := core.NewDate(start.Year(), start.Month()-1, 1)
		return closed(prev, lastOfMonth(prev), UnitMonth), true
	case UnitYear:
		return closed(core.NewDate(start.Year()-1, 1, 1), core.NewDate(start.Year()-1, 12, 31), UnitYear), true
	}
	days := int(end.Sub(start.Time).Hours() / 24)
	prevEnd := start.AddDays(-1)
	return closed(prevEnd.AddDays(-days), prevEnd, UnitDays), true
}

// Contains reports whether d falls inside r, bounds included.
func (r Range) Contains(d core.Date) bool {
	if r.Start != nil && d.Before(r.Start.Time) {
		return false
	}
	if r.End != nil && d.After(r.End.Time) {
		return false
	}
	return true
}

// Days returns the number of days covered by a closed range.
func (r Range) Days() int {
	if r.Start == nil || r.End == nil {
		return 0
	}
	return int(r.End.Sub(r.Start.Time).Hours()/24) + 1
}

func (r Range) String() string {
	b := func(d *core.Date) string {
		if d == nil {
			return "…"
		}
		return d.ISO()
	}
	return b(r.Start) + ".." + b(r.End)
}

func closed(start, end core.Date, unit Unit) Range {
	return Range{Start: &start, End: &end, Unit: unit}
}

func lastOfMonth(first core.Date) core.Date {
	return core.NewDate(first.Year(), first.Month()+1, 1).AddDays(-1)
}
