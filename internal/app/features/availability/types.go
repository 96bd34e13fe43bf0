// internal/app/features/availability/types.go
package availability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/schedhub/internal/domain/models"
	"github.com/dalemusser/schedhub/internal/domain/schedule"
)

// submitRequest is the body of PUT /availability/{scopeID}/{userID}.
type submitRequest struct {
	Start   string        `json:"start"`
	End     string        `json:"end"`
	Answers []answerEntry `json:"answers"`
}

type answerEntry struct {
	UserID string `json:"user_id,omitempty"`
	Date   string `json:"date"`
	State  string `json:"state"`
}

type submitResponse struct {
	ScopeID string `json:"scope_id"`
	UserID  string `json:"user_id"`
	Saved   int    `json:"saved"`
}

type listResponse struct {
	ScopeID string        `json:"scope_id"`
	Start   string        `json:"start"`
	End     string        `json:"end"`
	Answers []answerEntry `json:"answers"`
}

// validate returns an empty string when the request is well formed, or a
// client-facing message describing the first problem found.
func (r *submitRequest) validate() string {
	start, err := time.Parse(schedule.DateLayout, r.Start)
	if err != nil {
		return fmt.Sprintf("start must be a %s date", schedule.DateLayout)
	}
	end, err := time.Parse(schedule.DateLayout, r.End)
	if err != nil {
		return fmt.Sprintf("end must be a %s date", schedule.DateLayout)
	}
	if end.Before(start) {
		return "end must not be before start"
	}
	for _, a := range r.Answers {
		d, err := time.Parse(schedule.DateLayout, a.Date)
		if err != nil {
			return fmt.Sprintf("answer date %q must be a %s date", a.Date, schedule.DateLayout)
		}
		if d.Before(start) || d.After(end) {
			return fmt.Sprintf("answer date %q is outside the period", a.Date)
		}
		if a.State != models.AvailabilityAvailable && a.State != models.AvailabilityUnavailable {
			return fmt.Sprintf("state must be %q or %q", models.AvailabilityAvailable, models.AvailabilityUnavailable)
		}
	}
	return ""
}

// parseRange reads the required start/end query parameters.
func parseRange(r *http.Request) (start, end, msg string) {
	q := r.URL.Query()
	start = q.Get("start")
	end = q.Get("end")

	s, err := time.Parse(schedule.DateLayout, start)
	if err != nil {
		return "", "", fmt.Sprintf("start must be a %s date", schedule.DateLayout)
	}
	e, err := time.Parse(schedule.DateLayout, end)
	if err != nil {
		return "", "", fmt.Sprintf("end must be a %s date", schedule.DateLayout)
	}
	if e.Before(s) {
		return "", "", "end must not be before start"
	}
	return start, end, ""
}
