package model

import (
	"fmt"
	"time"
)

// DateRange is an inclusive range of whole days. Both bounds are
// normalized to midnight UTC on construction.
type DateRange struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewDateRange builds a DateRange, rejecting inverted ranges.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = TruncateDay(start)
	end = TruncateDay(end)
	if end.Before(start) {
		return DateRange{}, NewError(ErrInvalidArgument,
			fmt.Sprintf("date range end %s before start %s", end.Format(DateFormat), start.Format(DateFormat)))
	}
	return DateRange{StartDate: start, EndDate: end}, nil
}

// MustDateRange is NewDateRange for statically known bounds (fixtures,
// financial year construction).
func MustDateRange(start, end time.Time) DateRange {
	dr, err := NewDateRange(start, end)
	if err != nil {
		panic(err)
	}
	return dr
}

// DateFormat is the canonical wire/date-key format used for local
// serialization. The engine payload format differs (see engine package).
const DateFormat = "2006-01-02"

// TruncateDay drops the time-of-day component, keeping the date in UTC.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date is shorthand for a midnight-UTC day, used throughout tests and
// financial year math.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Days returns the inclusive day count of the range.
func (r DateRange) Days() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}

// Contains reports whether t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	t = TruncateDay(t)
	return !t.Before(r.StartDate) && !t.After(r.EndDate)
}

// Intersect returns the overlap of two ranges. ok is false when they do
// not overlap.
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	start := r.StartDate
	if other.StartDate.After(start) {
		start = other.StartDate
	}
	end := r.EndDate
	if other.EndDate.Before(end) {
		end = other.EndDate
	}
	if end.Before(start) {
		return DateRange{}, false
	}
	return DateRange{StartDate: start, EndDate: end}, true
}

// Equal reports whether both bounds match.
func (r DateRange) Equal(other DateRange) bool {
	return r.StartDate.Equal(other.StartDate) && r.EndDate.Equal(other.EndDate)
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s]", r.StartDate.Format(DateFormat), r.EndDate.Format(DateFormat))
}

// FinancialYear returns the statutory charging year that ends 31 March
// of the given year, i.e. 1 April (ending-1) to 31 March (ending).
func FinancialYear(ending int) DateRange {
	return DateRange{
		StartDate: Date(ending-1, time.April, 1),
		EndDate:   Date(ending, time.March, 31),
	}
}
