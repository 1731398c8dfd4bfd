package domain_test

import (
	"testing"
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

// Kyiv is UTC+2 in winter and UTC+3 in summer. In 2026 the switch to summer
// time happens on March 29 and back on October 25.
func TestRecurrenceRule_ComputeNextRunAt(t *testing.T) {
	tests := []struct {
		name string
		rule domain.RecurrenceRule
		now  time.Time
		want *time.Time // nil means no further occurrences
	}{
		{
			name: "daily after today's run time rolls to tomorrow",
			rule: domain.RecurrenceRule{
				Frequency: domain.FrequencyDaily,
				StartDate: date(2026, time.January, 1),
				RunAt:     "09:00",
				Timezone:  "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 10, 7, 10), // 09:10 local
			want: timePtr(utc(2026, time.February, 11, 7, 0)),
		},
		{
			name: "daily before today's run time keeps today",
			rule: domain.RecurrenceRule{
				Frequency: domain.FrequencyDaily,
				StartDate: date(2026, time.January, 1),
				RunAt:     "09:00",
				Timezone:  "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 10, 6, 30), // 08:30 local
			want: timePtr(utc(2026, time.February, 10, 7, 0)),
		},
		{
			name: "daily keeps local wall time across the spring DST switch",
			rule: domain.RecurrenceRule{
				Frequency: domain.FrequencyDaily,
				StartDate: date(2026, time.January, 1),
				RunAt:     "09:00",
				Timezone:  "Europe/Kyiv",
			},
			now: utc(2026, time.March, 28, 10, 0), // day before the switch
			// Still 09:00 local, but the UTC offset moved from +2 to +3.
			want: timePtr(utc(2026, time.March, 29, 6, 0)),
		},
		{
			name: "daily before the start date uses the start date",
			rule: domain.RecurrenceRule{
				Frequency: domain.FrequencyDaily,
				StartDate: date(2026, time.June, 1),
				RunAt:     "09:00",
				Timezone:  "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 10, 12, 0),
			want: timePtr(utc(2026, time.June, 1, 6, 0)),
		},
		{
			name: "once in the future fires at the start date",
			rule: domain.RecurrenceRule{
				Frequency: domain.FrequencyOnce,
				StartDate: date(2026, time.May, 1),
				RunAt:     "10:00",
				Timezone:  "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 10, 12, 0),
			want: timePtr(utc(2026, time.May, 1, 7, 0)),
		},
		{
			name: "once in the past never fires again",
			rule: domain.RecurrenceRule{
				Frequency: domain.FrequencyOnce,
				StartDate: date(2026, time.January, 5),
				RunAt:     "10:00",
				Timezone:  "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 10, 12, 0),
			want: nil,
		},
		{
			name: "weekly picks the next matching ISO weekday",
			rule: domain.RecurrenceRule{
				Frequency:  domain.FrequencyWeekly,
				DaysOfWeek: []int{1, 5}, // Monday, Friday
				StartDate:  date(2026, time.January, 1),
				RunAt:      "09:00",
				Timezone:   "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 11, 12, 0), // Wednesday
			want: timePtr(utc(2026, time.February, 13, 7, 0)),
		},
		{
			name: "weekly on the matching day but past run time moves a week on",
			rule: domain.RecurrenceRule{
				Frequency:  domain.FrequencyWeekly,
				DaysOfWeek: []int{5}, // Friday only
				StartDate:  date(2026, time.January, 1),
				RunAt:      "09:00",
				Timezone:   "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 13, 8, 0), // Friday 10:00 local
			want: timePtr(utc(2026, time.February, 20, 7, 0)),
		},
		{
			name: "weekly with no valid weekdays has no occurrence",
			rule: domain.RecurrenceRule{
				Frequency:  domain.FrequencyWeekly,
				DaysOfWeek: nil,
				StartDate:  date(2026, time.January, 1),
				RunAt:      "09:00",
				Timezone:   "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 11, 12, 0),
			want: nil,
		},
		{
			name: "monthly day 31 clamps to the end of February",
			rule: domain.RecurrenceRule{
				Frequency:  domain.FrequencyMonthly,
				DayOfMonth: 31,
				StartDate:  date(2026, time.January, 1),
				RunAt:      "09:00",
				Timezone:   "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 10, 12, 0),
			want: timePtr(utc(2026, time.February, 28, 7, 0)),
		},
		{
			name: "monthly re-clamps against the following month after rollover",
			rule: domain.RecurrenceRule{
				Frequency:  domain.FrequencyMonthly,
				DayOfMonth: 31,
				StartDate:  date(2026, time.January, 1),
				RunAt:      "09:00",
				Timezone:   "Europe/Kyiv",
			},
			now: utc(2026, time.February, 28, 8, 0), // past 09:00 local on the clamped day
			// March has 31 days and is on summer time by the 31st.
			want: timePtr(utc(2026, time.March, 31, 6, 0)),
		},
		{
			name: "every_n_days lands on the next grid day",
			rule: domain.RecurrenceRule{
				Frequency:    domain.FrequencyEveryNDay,
				IntervalDays: 3,
				StartDate:    date(2026, time.February, 1),
				RunAt:        "09:00",
				Timezone:     "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 5, 12, 0), // between grid days 4 and 7
			want: timePtr(utc(2026, time.February, 7, 7, 0)),
		},
		{
			name: "every_n_days on a grid day before run time keeps that day",
			rule: domain.RecurrenceRule{
				Frequency:    domain.FrequencyEveryNDay,
				IntervalDays: 3,
				StartDate:    date(2026, time.February, 1),
				RunAt:        "09:00",
				Timezone:     "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 4, 5, 0), // 07:00 local on grid day 4
			want: timePtr(utc(2026, time.February, 4, 7, 0)),
		},
		{
			name: "every_n_days before the start date uses the start date",
			rule: domain.RecurrenceRule{
				Frequency:    domain.FrequencyEveryNDay,
				IntervalDays: 10,
				StartDate:    date(2026, time.June, 10),
				RunAt:        "09:00",
				Timezone:     "Europe/Kyiv",
			},
			now:  utc(2026, time.June, 1, 12, 0),
			want: timePtr(utc(2026, time.June, 10, 6, 0)),
		},
		{
			name: "empty run time falls back to the default",
			rule: domain.RecurrenceRule{
				Frequency: domain.FrequencyDaily,
				StartDate: date(2026, time.January, 1),
				Timezone:  "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 10, 12, 0),
			want: timePtr(utc(2026, time.February, 11, 7, 0)),
		},
		{
			name: "unknown frequency yields no occurrence",
			rule: domain.RecurrenceRule{
				Frequency: domain.Frequency("fortnightly"),
				StartDate: date(2026, time.January, 1),
				RunAt:     "09:00",
				Timezone:  "Europe/Kyiv",
			},
			now:  utc(2026, time.February, 10, 12, 0),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.ComputeNextRunAt(tt.now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %s, got %s", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestRecurrenceRule_ComputeNextRunAt_InvalidTimezoneFallsBack(t *testing.T) {
	rule := domain.RecurrenceRule{
		Frequency: domain.FrequencyDaily,
		StartDate: date(2026, time.January, 1),
		RunAt:     "09:00",
		Timezone:  "Mars/Olympus_Mons",
	}
	got := rule.ComputeNextRunAt(utc(2026, time.February, 10, 12, 0))
	require.NotNil(t, got)
	// Falls back to the default zone, which is UTC+2 in February.
	assert.True(t, utc(2026, time.February, 11, 7, 0).Equal(*got))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
