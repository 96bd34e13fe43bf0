// internal/app/features/events/types.go
package events

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/schedhub/internal/domain/models"
	"github.com/dalemusser/schedhub/internal/domain/schedule"
)

// createRequest is the body of POST /events.
type createRequest struct {
	ScopeID         string   `json:"scope_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	MinParticipants int      `json:"min_participants"`
	MaxParticipants *int     `json:"max_participants"`
	CreatedBy       string   `json:"created_by"`
	RequiredMembers []string `json:"required_members"`
}

// validate returns an empty string when the request is well formed, or a
// client-facing message describing the first problem found.
func (r *createRequest) validate() string {
	if strings.TrimSpace(r.ScopeID) == "" {
		return "scope_id is required"
	}
	if strings.TrimSpace(r.Title) == "" {
		return "title is required"
	}
	if r.MinParticipants < 1 {
		return "min_participants must be at least 1"
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 1 {
		return "max_participants must be at least 1 when set"
	}
	if strings.TrimSpace(r.CreatedBy) == "" {
		return "created_by is required"
	}
	return ""
}

// confirmRequest is the body of POST /events/{id}/confirm.
type confirmRequest struct {
	Date string `json:"date"`
}

// memberRequest is the body of join and cancel.
type memberRequest struct {
	UserID string `json:"user_id"`
}

// candidateQuery is the parsed query string of GET /events/{id}/candidates.
type candidateQuery struct {
	Start    string
	End      string
	Limit    int
	Weekdays []time.Weekday
}

// parseCandidateQuery validates ?start&end&limit&weekdays. limit falls back
// to defaultLimit when absent; weekdays is a comma-separated list of 0..6
// (0 = Sunday) and absent means no restriction.
func parseCandidateQuery(r *http.Request, defaultLimit int) (candidateQuery, string) {
	q := r.URL.Query()
	cq := candidateQuery{
		Start: q.Get("start"),
		End:   q.Get("end"),
		Limit: defaultLimit,
	}

	start, err := time.Parse(schedule.DateLayout, cq.Start)
	if err != nil {
		return cq, fmt.Sprintf("start must be a %s date", schedule.DateLayout)
	}
	end, err := time.Parse(schedule.DateLayout, cq.End)
	if err != nil {
		return cq, fmt.Sprintf("end must be a %s date", schedule.DateLayout)
	}
	if end.Before(start) {
		return cq, "end must not be before start"
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return cq, "limit must be a positive integer"
		}
		cq.Limit = n
	}

	if raw := q.Get("weekdays"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 0 || n > 6 {
				return cq, "weekdays must be comma-separated values 0 (Sunday) through 6 (Saturday)"
			}
			cq.Weekdays = append(cq.Weekdays, time.Weekday(n))
		}
	}

	return cq, ""
}

// candidateView is one ranked date in the candidates response.
type candidateView struct {
	Date    string   `json:"date"`
	Count   int      `json:"count"`
	Members []string `json:"members"`
	Tags    []string `json:"tags"`
}

type candidatesResponse struct {
	EventID    string          `json:"event_id"`
	Start      string          `json:"start"`
	End        string          `json:"end"`
	Limit      int             `json:"limit"`
	Candidates []candidateView `json:"candidates"`
}

// signupView is one member in the roster response.
type signupView struct {
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

type rosterResponse struct {
	EventID    string       `json:"event_id"`
	Confirmed  []signupView `json:"confirmed"`
	Waitlisted []signupView `json:"waitlisted"`
}

func newRosterResponse(eventID string, signups []models.Signup) rosterResponse {
	resp := rosterResponse{
		EventID:    eventID,
		Confirmed:  []signupView{},
		Waitlisted: []signupView{},
	}
	for _, sg := range signups {
		view := signupView{UserID: sg.UserID, JoinedAt: sg.JoinedAt}
		if sg.Status == models.SignupConfirmed {
			resp.Confirmed = append(resp.Confirmed, view)
		} else {
			resp.Waitlisted = append(resp.Waitlisted, view)
		}
	}
	return resp
}
