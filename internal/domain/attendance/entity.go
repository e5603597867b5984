package attendance

import (
	"time"
)

type DailyStatus string

const (
	StatusPresent        DailyStatus = "PRESENT"
	StatusHalfDay        DailyStatus = "HALF_DAY"
	StatusEarlyDeparture DailyStatus = "EARLY_DEPARTURE"
	StatusAbsent         DailyStatus = "ABSENT"
)

// Session is one check-in/check-out pair of a user on a work date.
type Session struct {
	ID             string
	UserID         string
	OrganizationID string
	WorkDate       time.Time
	SessionNumber  int
	CheckIn        time.Time
	CheckOut       *time.Time
	Verified       bool
	VerifiedBy     *string
	VerifiedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (s Session) IsOpen() bool {
	return s.CheckOut == nil
}

// Duration is nil while the session is open.
func (s Session) Duration() *Duration {
	if s.CheckOut == nil || !s.CheckOut.After(s.CheckIn) {
		return nil
	}
	d := NewDuration(s.CheckOut.Sub(s.CheckIn))
	return &d
}

type Duration struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"total_minutes"`
}

func NewDuration(d time.Duration) Duration {
	total := int(d / time.Minute)
	return Duration{
		Hours:        total / 60,
		Minutes:      total % 60,
		TotalMinutes: total,
	}
}

// DailyAggregate is the derived status of all sessions on one date.
type DailyAggregate struct {
	Date     time.Time
	Status   DailyStatus
	Total    time.Duration
	Sessions int
	Verified bool
}
