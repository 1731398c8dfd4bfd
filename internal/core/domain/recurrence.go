package domain

import "time"

// ComputeNextRunAt computes the next occurrence of the rule strictly with
// respect to nowUTC, returning nil when the rule has no further occurrences.
// The result is in UTC.
//
// All calendar arithmetic happens in the rule's timezone and is converted
// back only at the end, so run-at stays anchored to local wall time across
// daylight-saving transitions. The function never reads ambient time; the
// caller supplies the reference instant.
func (r *RecurrenceRule) ComputeNextRunAt(nowUTC time.Time) *time.Time {
	loc := r.location()
	fromLocal := nowUTC.In(loc)

	hour, minute, sec := parseRunAt(r.RunAt)
	base := time.Date(r.StartDate.Year(), r.StartDate.Month(), r.StartDate.Day(), hour, minute, sec, 0, loc)

	switch r.Frequency {
	case FrequencyOnce:
		if !base.After(fromLocal) {
			return nil
		}
		return utcPtr(base)

	case FrequencyDaily:
		if fromLocal.Before(base) {
			return utcPtr(base)
		}
		candidate := atTime(fromLocal, hour, minute, sec)
		if !candidate.After(fromLocal) {
			candidate = addDays(candidate, 1)
		}
		return utcPtr(candidate)

	case FrequencyEveryNDay:
		interval := r.IntervalDays
		if interval < 1 {
			interval = 1
		}
		if fromLocal.Before(base) {
			return utcPtr(base)
		}
		// Whole days elapsed since the base occurrence, truncating a partial
		// day, so a grid day whose run-at has not yet passed still counts as
		// "this step". Computed on calendar dates to stay exact across DST.
		elapsed := calendarDays(base, fromLocal)
		if atTime(fromLocal, hour, minute, sec).After(fromLocal) {
			elapsed--
		}
		if elapsed < 0 {
			elapsed = 0
		}
		steps := elapsed/interval + 1
		return utcPtr(addDays(base, steps*interval))

	case FrequencyWeekly:
		days := make(map[int]bool, len(r.DaysOfWeek))
		for _, d := range r.DaysOfWeek {
			if d >= 1 && d <= 7 {
				days[d] = true
			}
		}
		if len(days) == 0 {
			return nil
		}
		from := fromLocal
		if from.Before(base) {
			from = base
		}
		candidate := atTime(from, hour, minute, sec)
		// Two full weeks bounds the scan; any nonempty weekday set matches
		// within seven days.
		for i := 0; i < 14; i++ {
			if days[isoWeekday(candidate)] && candidate.After(from) {
				return utcPtr(candidate)
			}
			candidate = addDays(candidate, 1)
		}
		return nil

	case FrequencyMonthly:
		dayOfMonth := r.DayOfMonth
		if dayOfMonth <= 0 {
			dayOfMonth = base.Day()
		}
		from := fromLocal
		if from.Before(base) {
			from = base
		}
		year, month := from.Year(), from.Month()
		day := clampDay(dayOfMonth, year, month)
		candidate := time.Date(year, month, day, hour, minute, sec, 0, loc)
		if !candidate.After(from) {
			year, month = nextMonth(year, month)
			// Re-clamp against the candidate month, not the start month.
			day = clampDay(dayOfMonth, year, month)
			candidate = time.Date(year, month, day, hour, minute, sec, 0, loc)
		}
		return utcPtr(candidate)
	}

	// Unrecognized frequency: no occurrence rather than a wrong one.
	return nil
}

func (r *RecurrenceRule) location() *time.Location {
	name := r.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			return time.UTC
		}
	}
	return loc
}

// parseRunAt accepts "HH:MM" or "HH:MM:SS", falling back to DefaultRunAt.
func parseRunAt(s string) (hour, minute, sec int) {
	if s == "" {
		s = DefaultRunAt
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		t, _ = time.Parse("15:04", DefaultRunAt)
	}
	return t.Hour(), t.Minute(), t.Second()
}

// atTime rebuilds t at the given local wall-clock time on the same date.
func atTime(t time.Time, hour, minute, sec int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, sec, 0, t.Location())
}

// addDays advances by whole calendar days, preserving local wall time even
// when a DST transition falls inside the span.
func addDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

// calendarDays counts calendar dates from a to b (b on a later date gives a
// positive count), ignoring time of day.
func calendarDays(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// isoWeekday maps Go's Sunday-first weekday to ISO 8601 numbering (Mon=1..Sun=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func clampDay(day, year int, month time.Month) int {
	if last := daysInMonth(year, month); day > last {
		return last
	}
	return day
}

// daysInMonth uses the day-zero-of-next-month normalization.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func utcPtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
