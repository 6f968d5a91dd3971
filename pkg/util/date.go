package util

import "time"

// DateLayout is the day format used for price series.
const DateLayout = "2006-01-02"

// TrailingWindow returns [now-days, now].
func TrailingWindow(now time.Time, days int) (time.Time, time.Time) {
	return now.AddDate(0, 0, -days), now
}

// FormatUnixDate formats unix seconds as a UTC day.
func FormatUnixDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(DateLayout)
}

// YearsBack returns n fiscal years counting down from start.
func YearsBack(start, n int) []int {
	if n <= 0 {
		return nil
	}
	years := make([]int, 0, n)
	for i := 0; i < n; i++ {
		years = append(years, start-i)
	}
	return years
}
