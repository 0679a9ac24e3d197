// Package timeslot holds the wall-clock arithmetic shared by validation,
// conflict detection and the availability grid. All values are minute
// offsets from midnight; a window whose close is at or before its open
// wraps past midnight and its minutes run beyond 1440.
package timeslot

import (
	"errors"
	"fmt"
)

const MinutesPerDay = 24 * 60

// ErrMalformedTime reports an input that is not a valid "HH:MM" value.
var ErrMalformedTime = errors.New("malformed time, expected HH:MM")

// OutsideOperatingHoursError means a requested interval does not fit fully
// inside the zone's operating window.
type OutsideOperatingHoursError struct {
	Open          string
	Close         string
	Start         string
	DurationHours int
}

func (e *OutsideOperatingHoursError) Error() string {
	return fmt.Sprintf("requested %s for %dh is outside operating hours %s-%s",
		e.Start, e.DurationHours, e.Open, e.Close)
}

// ToMinutes parses a strict "HH:MM" wall-clock value into minutes from
// midnight.
func ToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return h*60 + m, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// ToClock formats a minute offset back to "HH:MM", wrapping values past
// midnight into the next day's clock.
func ToClock(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// WindowSpan normalizes an operating window. If close is at or before open
// the window crosses midnight and the normalized close lands past 1440.
func WindowSpan(open, close int) (normalizedClose int, wraps bool) {
	if close <= open {
		return close + MinutesPerDay, true
	}
	return close, false
}

// NormalizeStart shifts a start time into the window's minute space. In a
// wrapped window a start before the opening time belongs to the stretch
// after midnight.
func NormalizeStart(start, open int, wraps bool) int {
	if wraps && start < open {
		return start + MinutesPerDay
	}
	return start
}

// FitsWindow checks that the interval [start, start+duration) lies fully
// inside the operating window. Same-day wall-clock only; no calendar date
// is involved.
func FitsWindow(open, close, start string, durationHours int) error {
	openMin, err := ToMinutes(open)
	if err != nil {
		return err
	}
	closeMin, err := ToMinutes(close)
	if err != nil {
		return err
	}
	startMin, err := ToMinutes(start)
	if err != nil {
		return err
	}

	normClose, wraps := WindowSpan(openMin, closeMin)
	normStart := NormalizeStart(startMin, openMin, wraps)

	if normStart < openMin || normStart+durationHours*60 > normClose {
		return &OutsideOperatingHoursError{
			Open:          open,
			Close:         close,
			Start:         start,
			DurationHours: durationHours,
		}
	}
	return nil
}

// HourLabels returns the whole-hour minute offsets spanning the operating
// window, in window order. A 09:00-17:00 window yields 09:00 through 16:00;
// a 22:00-02:00 window yields 22:00, 23:00, 24:00 (=00:00), 25:00 (=01:00).
func HourLabels(open, close string) ([]int, error) {
	openMin, err := ToMinutes(open)
	if err != nil {
		return nil, err
	}
	closeMin, err := ToMinutes(close)
	if err != nil {
		return nil, err
	}
	normClose, _ := WindowSpan(openMin, closeMin)

	firstHour := openMin - openMin%60
	if firstHour < openMin {
		firstHour += 60 // partial opening hour is not offered as a slot start
	}

	var labels []int
	for h := firstHour; h+60 <= normClose; h += 60 {
		labels = append(labels, h)
	}
	return labels, nil
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any time. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
