// Package timeconv converts between millisecond counts, second counts and
// (hours, minutes, seconds) tuples, and renders them for display.
package timeconv

import (
	"fmt"
	"time"
)

const (
	millisPerSecond = 1_000
	millisPerMinute = 60_000
	millisPerHour   = 3_600_000
)

func HoursMinutesSecondsToMillis(hours, minutes, seconds int64) int64 {
	return hours*millisPerHour + minutes*millisPerMinute + seconds*millisPerSecond
}

// MillisToHoursMinutesSeconds discards any fractional second before
// decomposing.
func MillisToHoursMinutesSeconds(millis int64) (hours, minutes, seconds int64) {
	return SecondsToHoursMinutesSeconds(millis / millisPerSecond)
}

func SecondsToHoursMinutesSeconds(total int64) (hours, minutes, seconds int64) {
	hours = total / 3600
	minutes = (total % 3600) / 60
	seconds = total % 60
	return hours, minutes, seconds
}

// FormatStopwatch renders millis as HH:MM:SS. Hours are not wrapped, so
// 100 hours renders as "100:00:00".
func FormatStopwatch(millis int64) string {
	h, m, s := MillisToHoursMinutesSeconds(millis)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// TimerString renders a whole number of seconds as HH:MM:SS.
func TimerString(seconds int64) string {
	h, m, s := SecondsToHoursMinutesSeconds(seconds)
	return FormatStopwatch(HoursMinutesSecondsToMillis(h, m, s))
}

// FormatDecimalHours renders millis as hours with two decimals, rounding
// half up.
func FormatDecimalHours(millis int64) string {
	// hundredths of an hour, rounded half up in integer arithmetic
	cents := ((millis/millisPerSecond)*100 + 1800) / 3600
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// FormatClockTime renders an instant as 12-hour wall-clock time, e.g. "9:05 PM".
func FormatClockTime(millis int64, loc *time.Location) string {
	return inLocation(millis, loc).Format("3:04 PM")
}

// FormatCalendarDate renders an instant as e.g. "Mar 7, 2024".
func FormatCalendarDate(millis int64, loc *time.Location) string {
	return inLocation(millis, loc).Format("Jan 2, 2006")
}

func inLocation(millis int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(millis).In(loc)
}
