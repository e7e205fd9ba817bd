package doctype

import "time"

// ComputeExpiry adds period units to approvedAt with calendar arithmetic.
// Month and year steps clamp the day to the length of the target month, so
// Jan 31 + 1 month is Feb 28/29 rather than rolling into March. The clock
// time and location of approvedAt are preserved. Returns nil for a
// non-positive period or an unknown unit.
func ComputeExpiry(approvedAt time.Time, period int, unit RenewalUnit) *time.Time {
	if period <= 0 {
		return nil
	}
	var out time.Time
	switch unit {
	case UnitDays:
		out = approvedAt.AddDate(0, 0, period)
	case UnitMonths:
		out = addMonthsClamped(approvedAt, period)
	case UnitYears:
		out = addMonthsClamped(approvedAt, 12*period)
	default:
		return nil
	}
	return &out
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	// normalise via the first of the target month, which never overflows
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}
