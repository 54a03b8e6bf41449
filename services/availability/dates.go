package availability

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// DateKey renders t as a UTC calendar date, the form blackout dates are stored in.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DatesBetween returns every calendar date from from to to, both inclusive.
func DatesBetween(from, to time.Time) []string {
	start, end := StartOfDay(from), StartOfDay(to)
	if end.Before(start) {
		return nil
	}
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates
}

// UnionDates merges add into existing without duplicates. The result is sorted.
func UnionDates(existing, add []string) []string {
	set := make(map[string]struct{}, len(existing)+len(add))
	for _, d := range existing {
		set[d] = struct{}{}
	}
	for _, d := range add {
		set[d] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// RemoveDates returns existing without any date in remove.
func RemoveDates(existing, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, d := range remove {
		drop[d] = struct{}{}
	}
	out := make([]string, 0, len(existing))
	for _, d := range existing {
		if _, ok := drop[d]; !ok {
			out = append(out, d)
		}
	}
	return out
}
