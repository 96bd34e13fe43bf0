// internal/domain/schedule/schedule.go

// Package schedule ranks candidate dates for an event from raw availability
// answers. It is pure computation: no storage, no clock, no side effects.
// Callers validate input at the boundary; the only failures here are
// malformed calendar dates and out-of-range weekday values.
package schedule

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the calendar date format used throughout the service.
// Dates are local-naive: "2024-06-01" means that calendar day wherever the
// group happens to be, with no timezone conversion.
const DateLayout = "2006-01-02"

// Entry is one member's "available" answer for one date, already filtered
// to the relevant scope by the caller.
type Entry struct {
	Date   string // "2006-01-02"
	UserID string
}

// Request carries the constraints for one ranking run.
//
// Limit is required and explicit: the algorithm never supplies a default.
// (Earlier iterations of this system had two call sites silently disagreeing
// on the default; pushing the choice to the boundary config ended that.)
type Request struct {
	Start string // inclusive, "2006-01-02"
	End   string // inclusive

	// RequiredMembers must all be available for a date to qualify.
	RequiredMembers []string

	// MinParticipants is the minimum available-member count for a date to
	// qualify. The boundary validates it is >= 1; no clamping happens here.
	MinParticipants int

	// Weekdays restricts candidates to these weekdays (time.Sunday ..
	// time.Saturday). Empty means no weekday restriction.
	Weekdays []time.Weekday

	// RegisteredCount is the scope's member count, used only for the
	// full-attendance tag. Zero means derive it from the entries.
	RegisteredCount int

	// Limit caps the number of candidates returned.
	Limit int
}

// Candidate is one qualifying date with its attendees and tags. Candidates
// are derived per call and never persisted.
type Candidate struct {
	Date    string
	Count   int
	Members []string // sorted ascending
	Tags    []Tag    // fixed order, see tags.go
}

// Find filters, tags, and ranks the dates in entries according to req.
//
// Order of results: available-member count descending, then date ascending.
// The secondary key keeps the ranking reproducible instead of a function of
// map iteration order. Empty entries yield an empty result.
func Find(entries []Entry, req Request) ([]Candidate, error) {
	start, err := time.Parse(DateLayout, req.Start)
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", req.Start, err)
	}
	end, err := time.Parse(DateLayout, req.End)
	if err != nil {
		return nil, fmt.Errorf("parse end date %q: %w", req.End, err)
	}
	for _, wd := range req.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, fmt.Errorf("weekday %d out of range", wd)
		}
	}

	// Group entries by date; set semantics per date so a duplicated
	// (date, member) pair cannot inflate the count.
	byDate := make(map[string]map[string]bool)
	allMembers := make(map[string]bool)
	for _, e := range entries {
		day, err := time.Parse(DateLayout, e.Date)
		if err != nil {
			return nil, fmt.Errorf("parse availability date %q: %w", e.Date, err)
		}
		if day.Before(start) || day.After(end) {
			continue
		}
		set := byDate[e.Date]
		if set == nil {
			set = make(map[string]bool)
			byDate[e.Date] = set
		}
		set[e.UserID] = true
		allMembers[e.UserID] = true
	}

	registered := req.RegisteredCount
	if registered == 0 {
		registered = len(allMembers)
	}

	weekdayAllowed := func(wd time.Weekday) bool {
		if len(req.Weekdays) == 0 {
			return true
		}
		for _, w := range req.Weekdays {
			if w == wd {
				return true
			}
		}
		return false
	}

	candidates := make([]Candidate, 0, len(byDate))
	for date, set := range byDate {
		day, _ := time.Parse(DateLayout, date) // parsed once above
		if !weekdayAllowed(day.Weekday()) {
			continue
		}
		if !containsAll(set, req.RequiredMembers) {
			continue
		}
		if len(set) < req.MinParticipants {
			continue
		}

		members := make([]string, 0, len(set))
		for m := range set {
			members = append(members, m)
		}
		sort.Strings(members)

		candidates = append(candidates, Candidate{
			Date:    date,
			Count:   len(members),
			Members: members,
			Tags: tagsFor(day.Weekday(), len(members), registered,
				req.MinParticipants, len(req.RequiredMembers) > 0),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Count != candidates[j].Count {
			return candidates[i].Count > candidates[j].Count
		}
		return candidates[i].Date < candidates[j].Date
	})

	if req.Limit >= 0 && len(candidates) > req.Limit {
		candidates = candidates[:req.Limit]
	}
	return candidates, nil
}

// containsAll reports whether every id in required is present in set.
// An empty required list is trivially satisfied.
func containsAll(set map[string]bool, required []string) bool {
	for _, id := range required {
		if !set[id] {
			return false
		}
	}
	return true
}
