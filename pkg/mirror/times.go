package mirror

import (
	"time"
)

// CompareTimes orders a against b and returns -1, 0 or 1.
//
// Year, month, day and hour must match exactly. In exact mode minutes,
// seconds and the sub-second part must match too. Otherwise the position
// within the hour may differ by up to skew, which absorbs the coarse
// timestamp resolution of some filesystems.
func CompareTimes(a, b time.Time, exact bool, skew time.Duration) int {
	a, b = a.UTC(), b.UTC()

	if c := cmpInt(a.Year(), b.Year()); c != 0 {
		return c
	}
	if c := cmpInt(int(a.Month()), int(b.Month())); c != 0 {
		return c
	}
	if c := cmpInt(a.Day(), b.Day()); c != 0 {
		return c
	}
	if c := cmpInt(a.Hour(), b.Hour()); c != 0 {
		return c
	}

	if exact {
		if c := cmpInt(a.Minute(), b.Minute()); c != 0 {
			return c
		}
		if c := cmpInt(a.Second(), b.Second()); c != 0 {
			return c
		}
		return cmpInt(a.Nanosecond(), b.Nanosecond())
	}

	sa := a.Minute()*60 + a.Second()
	sb := b.Minute()*60 + b.Second()
	tolerance := int(skew / time.Second)
	switch {
	case sa > sb+tolerance:
		return 1
	case sa < sb-tolerance:
		return -1
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
