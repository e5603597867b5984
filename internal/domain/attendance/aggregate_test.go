package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)

func session(day int, start time.Duration, length time.Duration, verified bool) Session {
	workDate := time.Date(2025, time.September, day, 0, 0, 0, 0, time.UTC)
	in := workDate.Add(start)
	out := in.Add(length)
	return Session{WorkDate: workDate, CheckIn: in, CheckOut: &out, Verified: verified}
}

func TestSessionDuration(t *testing.T) {
	d, err := SessionDuration(base, base.Add(8*time.Hour+15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, Duration{Hours: 8, Minutes: 15, TotalMinutes: 495}, d)

	_, err = SessionDuration(base, base)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = SessionDuration(base, base.Add(-time.Minute))
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = SessionDuration(base, base.Add(29*time.Minute))
	assert.ErrorIs(t, err, ErrSessionTooShort)

	_, err = SessionDuration(base, base.Add(MinSessionDuration))
	assert.NoError(t, err)
}

func TestClassifyDay(t *testing.T) {
	cases := []struct {
		total time.Duration
		want  DailyStatus
	}{
		{0, StatusAbsent},
		{time.Minute, StatusEarlyDeparture},
		{4*time.Hour - time.Second, StatusEarlyDeparture},
		{4 * time.Hour, StatusHalfDay},
		{8*time.Hour - time.Second, StatusHalfDay},
		{8 * time.Hour, StatusPresent},
		{11 * time.Hour, StatusPresent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyDay(tc.total), tc.total.String())
	}
}

func TestAggregateDays_SumsSessionsPerDate(t *testing.T) {
	sessions := []Session{
		session(1, 9*time.Hour, 4*time.Hour, true),
		session(1, 14*time.Hour, 4*time.Hour, true),
		session(2, 9*time.Hour, 5*time.Hour, true),
	}
	days := AggregateDays(sessions)
	require.Len(t, days, 2)
	assert.Equal(t, StatusPresent, days[0].Status)
	assert.Equal(t, 2, days[0].Sessions)
	assert.Equal(t, 8*time.Hour, days[0].Total)
	assert.Equal(t, StatusHalfDay, days[1].Status)
}

func TestAggregateDays_OpenSessionAddsNoTime(t *testing.T) {
	open := Session{WorkDate: time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC), CheckIn: base}
	days := AggregateDays([]Session{open})
	require.Len(t, days, 1)
	assert.Equal(t, StatusAbsent, days[0].Status)
	assert.False(t, days[0].Verified)
}

func TestSummarize_VerifiedOnly(t *testing.T) {
	sessions := []Session{
		session(1, 9*time.Hour, 8*time.Hour, true),
		session(2, 9*time.Hour, 8*time.Hour, false),
		session(3, 9*time.Hour, 5*time.Hour, true),
		session(4, 9*time.Hour, 2*time.Hour, true),
	}
	sum := Summarize(sessions, 2025, time.September)
	assert.Equal(t, 1, sum.PresentDays)
	assert.Equal(t, 1, sum.HalfDayCount)
	assert.Equal(t, 1, sum.EarlyDepartureCount)
}

func TestSummarize_IgnoresOtherMonths(t *testing.T) {
	aug := session(1, 9*time.Hour, 8*time.Hour, true)
	aug.WorkDate = time.Date(2025, time.August, 29, 0, 0, 0, 0, time.UTC)

	sum := Summarize([]Session{aug}, 2025, time.September)
	assert.Equal(t, Summary{}, sum)
}

func TestSummarize_UnverifiedSessionDoesNotPromoteVerifiedDay(t *testing.T) {
	sessions := []Session{
		session(5, 9*time.Hour, 4*time.Hour, true),
		session(5, 14*time.Hour, 4*time.Hour, false),
	}
	sum := Summarize(sessions, 2025, time.September)
	assert.Equal(t, 0, sum.PresentDays)
	assert.Equal(t, 1, sum.HalfDayCount)
}

func TestNewMonthlyAttendanceResponse(t *testing.T) {
	sessions := []Session{
		session(1, 9*time.Hour, 8*time.Hour, true),
		session(2, 9*time.Hour, 8*time.Hour, false),
	}
	resp := NewMonthlyAttendanceResponse(2025, 9, sessions)
	require.Len(t, resp.Days, 2)
	assert.Equal(t, "2025-09-01", resp.Days[0].Date)
	assert.Equal(t, 480, resp.Days[0].TotalMinutes)
	assert.True(t, resp.Days[0].Verified)
	assert.False(t, resp.Days[1].Verified)
	assert.Equal(t, 1, resp.PresentDays)
}
