package notification

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Type is the template a notification was rendered from.
type Type string

const (
	TypeSalaryPaid    Type = "salary_paid"
	TypeLeaveApproved Type = "leave_approved"
)

// Template renders a title and message from named variables. Placeholders
// are written as {name}.
type Template struct {
	Title   string
	Message string
}

var templates = map[Type]Template{
	TypeSalaryPaid: {
		Title:   "Salary paid",
		Message: "Your salary for {period} of {net_salary} has been paid via {payment_mode}.",
	},
	TypeLeaveApproved: {
		Title:   "Leave approved",
		Message: "Your leave from {start_date} to {end_date} ({number_of_days} days) was approved. {remaining_days} days remain.",
	},
}

// Lookup returns the template registered for t.
func Lookup(t Type) (Template, error) {
	tpl, ok := templates[t]
	if !ok {
		return Template{}, fmt.Errorf("unknown notification template %q", t)
	}
	return tpl, nil
}

// Render substitutes vars into the template. Unknown placeholders are left
// as they are.
func (t Template) Render(vars map[string]string) (string, string) {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace(t.Title), r.Replace(t.Message)
}

// Notification is one rendered message stored for a recipient.
type Notification struct {
	ID          string
	RecipientID string
	Type        Type
	Title       string
	Message     string
	Data        map[string]string
	IsRead      bool
	CreatedAt   time.Time
}
