package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeriodForTime(t *testing.T) {
	cases := []struct {
		clock string
		want  string
	}{
		{"05:00", "morning"},
		{"07:45", "morning"},
		{"09:29", "morning"},
		{"09:30", "midday"},
		{"11:00", "midday"},
		{"12:59", "midday"},
		{"13:00", "afternoon"},
		{"15:30", "afternoon"},
		{"19:45", "afternoon"},
		{"03:00", "morning"}, // pre-dawn counts as morning
	}

	for _, tc := range cases {
		t.Run(tc.clock, func(t *testing.T) {
			tm, err := ParseLocal(DateLayout+" "+ClockLayout, "2026-05-01 "+tc.clock)
			require.NoError(t, err)
			require.Equal(t, tc.want, PeriodForTime(tm))
		})
	}
}

func TestPeriodForTimeNormalizesZone(t *testing.T) {
	// 18:00 UTC is 14:00 in Montreal during DST
	utc := time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)
	require.Equal(t, "afternoon", PeriodForTime(utc))
}

func TestStartOfDay(t *testing.T) {
	tm, err := ParseLocal(DateTimeLayout, "2026-05-01 16:22:10")
	require.NoError(t, err)

	start := StartOfDay(tm)
	require.Equal(t, 0, start.Hour())
	require.Equal(t, 0, start.Minute())
	require.Equal(t, tm.Day(), start.Day())
}

func TestParseLocalRejectsGarbage(t *testing.T) {
	_, err := ParseLocal(DateLayout, "not-a-date")
	require.Error(t, err)
}
