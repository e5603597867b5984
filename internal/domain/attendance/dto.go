package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type MonthFilter struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (f *MonthFilter) Validate() error {
	var errs validator.ValidationErrors
	validator.ValidatePeriod(&errs, "month", f.Month, "year", f.Year)
	return errs.Err()
}

type SessionResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	WorkDate      string     `json:"work_date"`
	SessionNumber int        `json:"session_number"`
	CheckIn       time.Time  `json:"check_in"`
	CheckOut      *time.Time `json:"check_out,omitempty"`
	Duration      *Duration  `json:"duration,omitempty"`
	Verified      bool       `json:"verified"`
	VerifiedBy    *string    `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
}

func NewSessionResponse(s Session) SessionResponse {
	return SessionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		WorkDate:      dateKey(s.WorkDate),
		SessionNumber: s.SessionNumber,
		CheckIn:       s.CheckIn,
		CheckOut:      s.CheckOut,
		Duration:      s.Duration(),
		Verified:      s.Verified,
		VerifiedBy:    s.VerifiedBy,
		VerifiedAt:    s.VerifiedAt,
	}
}

type CheckOutResponse struct {
	Session           SessionResponse `json:"session"`
	DailyStatus       DailyStatus     `json:"daily_status"`
	DailyTotalMinutes int             `json:"daily_total_minutes"`
}

type DailyAttendanceResponse struct {
	Date         string      `json:"date"`
	Status       DailyStatus `json:"status"`
	TotalMinutes int         `json:"total_minutes"`
	Sessions     int         `json:"sessions"`
	Verified     bool        `json:"verified"`
}

type MonthlyAttendanceResponse struct {
	Month        int                       `json:"month"`
	Year         int                       `json:"year"`
	Days         []DailyAttendanceResponse `json:"days"`
	PresentDays  int                       `json:"present_days"`
	HalfDayCount int                       `json:"half_day_count"`
}

func NewMonthlyAttendanceResponse(year, month int, sessions []Session) MonthlyAttendanceResponse {
	days := AggregateDays(sessions)
	resp := MonthlyAttendanceResponse{
		Month: month,
		Year:  year,
		Days:  make([]DailyAttendanceResponse, 0, len(days)),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, DailyAttendanceResponse{
			Date:         dateKey(d.Date),
			Status:       d.Status,
			TotalMinutes: int(d.Total / time.Minute),
			Sessions:     d.Sessions,
			Verified:     d.Verified,
		})
	}
	summary := Summarize(sessions, year, time.Month(month))
	resp.PresentDays = summary.PresentDays
	resp.HalfDayCount = summary.HalfDayCount
	return resp
}
