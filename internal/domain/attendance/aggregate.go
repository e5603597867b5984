package attendance

import (
	"sort"
	"time"
)

const (
	MinSessionDuration = 30 * time.Minute
	PresentThreshold   = 8 * time.Hour
	HalfDayThreshold   = 4 * time.Hour
)

// SessionDuration validates a check-out against its check-in.
func SessionDuration(checkIn, checkOut time.Time) (Duration, error) {
	if !checkOut.After(checkIn) {
		return Duration{}, ErrInvalidSession
	}
	d := checkOut.Sub(checkIn)
	if d < MinSessionDuration {
		return Duration{}, ErrSessionTooShort
	}
	return NewDuration(d), nil
}

// ClassifyDay maps the summed session time of one date to its status.
func ClassifyDay(total time.Duration) DailyStatus {
	switch {
	case total >= PresentThreshold:
		return StatusPresent
	case total >= HalfDayThreshold:
		return StatusHalfDay
	case total > 0:
		return StatusEarlyDeparture
	default:
		return StatusAbsent
	}
}

func dateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// AggregateDays groups sessions by work date and classifies each date.
// Open sessions count towards Sessions but add no time. A date is Verified
// only when every completed session on it is verified.
func AggregateDays(sessions []Session) []DailyAggregate {
	byDate := make(map[string]*DailyAggregate)
	for _, s := range sessions {
		key := dateKey(s.WorkDate)
		agg, ok := byDate[key]
		if !ok {
			agg = &DailyAggregate{Date: s.WorkDate, Verified: true}
			byDate[key] = agg
		}
		agg.Sessions++
		if d := s.Duration(); d != nil {
			agg.Total += s.CheckOut.Sub(s.CheckIn)
			agg.Verified = agg.Verified && s.Verified
		}
	}

	out := make([]DailyAggregate, 0, len(byDate))
	for _, agg := range byDate {
		agg.Status = ClassifyDay(agg.Total)
		if agg.Total == 0 {
			agg.Verified = false
		}
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Summary is the payroll view of a month of attendance.
type Summary struct {
	PresentDays         int
	HalfDayCount        int
	EarlyDepartureCount int
}

// Summarize counts PRESENT and HALF_DAY dates of the target month using
// verified sessions only. Unverified sessions never contribute presence.
func Summarize(sessions []Session, year int, month time.Month) Summary {
	verified := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if !s.Verified {
			continue
		}
		if s.WorkDate.Year() != year || s.WorkDate.Month() != month {
			continue
		}
		verified = append(verified, s)
	}

	var sum Summary
	for _, day := range AggregateDays(verified) {
		switch day.Status {
		case StatusPresent:
			sum.PresentDays++
		case StatusHalfDay:
			sum.HalfDayCount++
		case StatusEarlyDeparture:
			sum.EarlyDepartureCount++
		}
	}
	return sum
}
