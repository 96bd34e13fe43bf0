// internal/app/features/events/handler.go

// Package events exposes the event lifecycle over JSON: create, inspect,
// rank candidate dates, confirm a date, and manage the signup roster.
package events

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/schedhub/internal/app/roster"
	availabilitystore "github.com/dalemusser/schedhub/internal/app/store/availability"
	eventstore "github.com/dalemusser/schedhub/internal/app/store/events"
	signupstore "github.com/dalemusser/schedhub/internal/app/store/signups"
	"github.com/dalemusser/schedhub/internal/app/system/eventlock"
	"github.com/dalemusser/schedhub/internal/app/system/httpjson"
	"github.com/dalemusser/schedhub/internal/app/system/timeouts"
	"github.com/dalemusser/schedhub/internal/domain/models"
	"github.com/dalemusser/schedhub/internal/domain/schedule"
)

// Handler holds dependencies for event endpoints.
type Handler struct {
	Events  *eventstore.Store
	Avail   *availabilitystore.Store
	Signups *signupstore.Store
	Roster  *roster.Roster

	// DefaultLimit is the candidate count used when the query string does
	// not pass one. Comes from config, never hardcoded in the ranking core.
	DefaultLimit int

	Log *zap.Logger
}

// NewHandler constructs an events Handler.
func NewHandler(events *eventstore.Store, avail *availabilitystore.Store, signups *signupstore.Store, rst *roster.Roster, defaultLimit int, logger *zap.Logger) *Handler {
	return &Handler{
		Events:       events,
		Avail:        avail,
		Signups:      signups,
		Roster:       rst,
		DefaultLimit: defaultLimit,
		Log:          logger,
	}
}

// eventID parses the {id} URL parameter. On failure it writes the 400 and
// returns false.
func eventID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid event id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// Create handles POST /events.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "events.create")
	defer cancel()

	created, err := h.Events.Create(ctx, models.Event{
		ScopeID:         req.ScopeID,
		Title:           req.Title,
		Description:     req.Description,
		MinParticipants: req.MinParticipants,
		MaxParticipants: req.MaxParticipants,
		CreatedBy:       req.CreatedBy,
		RequiredMembers: req.RequiredMembers,
	})
	if err != nil {
		h.Log.Error("events: create failed", zap.String("scope_id", req.ScopeID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create event")
		return
	}

	h.Log.Info("event created",
		zap.String("event_id", created.ID.Hex()),
		zap.String("scope_id", created.ScopeID),
		zap.String("title", created.Title))

	httpjson.Write(w, http.StatusCreated, created)
}

// Get handles GET /events/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "events.get")
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if errors.Is(err, eventstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		h.Log.Error("events: get failed", zap.String("event_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load event")
		return
	}
	httpjson.Write(w, http.StatusOK, event)
}

// GetByShareCode handles GET /events/share/{code}.
func (h *Handler) GetByShareCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		httpjson.Error(w, http.StatusBadRequest, "share code is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "events.share")
	defer cancel()

	event, err := h.Events.GetByShareCode(ctx, code)
	if errors.Is(err, eventstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		h.Log.Error("events: share lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load event")
		return
	}
	httpjson.Write(w, http.StatusOK, event)
}

// Candidates handles GET /events/{id}/candidates?start&end&limit&weekdays.
//
// Minimum participants and required members come from the event itself;
// the query string supplies the period, an optional weekday restriction,
// and an optional result limit.
func (h *Handler) Candidates(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	cq, msg := parseCandidateQuery(r, h.DefaultLimit)
	if msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "events.candidates")
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if errors.Is(err, eventstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		h.Log.Error("events: candidates lookup failed", zap.String("event_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load event")
		return
	}

	entries, err := h.Avail.ListAvailable(ctx, event.ScopeID, cq.Start, cq.End)
	if err != nil {
		h.Log.Error("events: availability scan failed", zap.String("event_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load availability")
		return
	}

	registered, err := h.Avail.CountDistinctMembers(ctx, event.ScopeID)
	if err != nil {
		h.Log.Error("events: member count failed", zap.String("event_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load availability")
		return
	}

	candidates, err := schedule.Find(entries, schedule.Request{
		Start:           cq.Start,
		End:             cq.End,
		RequiredMembers: event.RequiredMembers,
		MinParticipants: event.MinParticipants,
		Weekdays:        cq.Weekdays,
		RegisteredCount: registered,
		Limit:           cq.Limit,
	})
	if err != nil {
		// Inputs were validated above; reaching here means stored data is
		// malformed, which is a server-side problem.
		h.Log.Error("events: ranking failed", zap.String("event_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not rank candidates")
		return
	}

	resp := candidatesResponse{
		EventID:    id.Hex(),
		Start:      cq.Start,
		End:        cq.End,
		Limit:      cq.Limit,
		Candidates: []candidateView{},
	}
	for _, c := range candidates {
		tags := make([]string, 0, len(c.Tags))
		for _, t := range c.Tags {
			tags = append(tags, string(t))
		}
		resp.Candidates = append(resp.Candidates, candidateView{
			Date:    c.Date,
			Count:   c.Count,
			Members: c.Members,
			Tags:    tags,
		})
	}
	httpjson.Write(w, http.StatusOK, resp)
}

// Confirm handles POST /events/{id}/confirm. Confirming is one-shot: a
// second confirm gets a 409.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "events.confirm")
	defer cancel()

	err := h.Events.ConfirmDate(ctx, id, req.Date)
	switch {
	case err == nil:
	case errors.Is(err, eventstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "event not found")
		return
	case errors.Is(err, eventstore.ErrDateAlreadySet):
		httpjson.Error(w, http.StatusConflict, "event date is already confirmed")
		return
	default:
		// ConfirmDate validates the date format itself; anything it rejects
		// before touching the database is the client's fault.
		httpjson.Error(w, http.StatusBadRequest, "date must be a 2006-01-02 date")
		return
	}

	h.Log.Info("event date confirmed",
		zap.String("event_id", id.Hex()),
		zap.String("date", req.Date))

	httpjson.Write(w, http.StatusOK, map[string]string{
		"status": models.EventConfirmed,
		"date":   req.Date,
	})
}

// Join handles POST /events/{id}/join.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		httpjson.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "events.join")
	defer cancel()

	outcome, err := h.Roster.Join(ctx, id, req.UserID)
	if errors.Is(err, eventlock.ErrBusy) {
		httpjson.RetryableError(w, http.StatusConflict, "event is busy, try again")
		return
	}
	if err != nil {
		h.Log.Error("events: join failed",
			zap.String("event_id", id.Hex()),
			zap.String("user_id", req.UserID),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not join event")
		return
	}
	if outcome == roster.JoinEventNotFound {
		httpjson.Error(w, http.StatusNotFound, "event not found")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]string{"outcome": outcome})
}

// Cancel handles POST /events/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		httpjson.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "events.cancel")
	defer cancel()

	result, err := h.Roster.Cancel(ctx, id, req.UserID)
	if errors.Is(err, eventlock.ErrBusy) {
		httpjson.RetryableError(w, http.StatusConflict, "event is busy, try again")
		return
	}
	if err != nil {
		h.Log.Error("events: cancel failed",
			zap.String("event_id", id.Hex()),
			zap.String("user_id", req.UserID),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not cancel signup")
		return
	}
	if result.Outcome == roster.CancelNotFound {
		httpjson.Error(w, http.StatusNotFound, "no signup to cancel")
		return
	}

	httpjson.Write(w, http.StatusOK, result)
}

// RosterView handles GET /events/{id}/roster.
func (h *Handler) RosterView(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "events.roster")
	defer cancel()

	if _, err := h.Events.GetByID(ctx, id); err != nil {
		if errors.Is(err, eventstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "event not found")
			return
		}
		h.Log.Error("events: roster lookup failed", zap.String("event_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load roster")
		return
	}

	signups, err := h.Signups.ListByEvent(ctx, id)
	if err != nil {
		h.Log.Error("events: roster list failed", zap.String("event_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load roster")
		return
	}

	httpjson.Write(w, http.StatusOK, newRosterResponse(id.Hex(), signups))
}

// Delete handles DELETE /events/{id}. Signups go with the event.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "events.delete")
	defer cancel()

	deleted, err := h.Events.Delete(ctx, id)
	if err != nil {
		h.Log.Error("events: delete failed", zap.String("event_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete event")
		return
	}
	if deleted == 0 {
		httpjson.Error(w, http.StatusNotFound, "event not found")
		return
	}

	removed, err := h.Signups.DeleteByEvent(ctx, id)
	if err != nil {
		h.Log.Error("events: signup cleanup failed", zap.String("event_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "event deleted but signup cleanup failed")
		return
	}

	h.Log.Info("event deleted",
		zap.String("event_id", id.Hex()),
		zap.Int64("signups_removed", removed))

	httpjson.Write(w, http.StatusOK, map[string]any{
		"deleted":         true,
		"signups_removed": removed,
	})
}

// ListByScope handles GET /events?scope=...
func (h *Handler) ListByScope(w http.ResponseWriter, r *http.Request) {
	scopeID := r.URL.Query().Get("scope")
	if scopeID == "" {
		httpjson.Error(w, http.StatusBadRequest, "scope is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "events.list")
	defer cancel()

	list, err := h.Events.ListByScope(ctx, scopeID)
	if err != nil {
		h.Log.Error("events: list failed", zap.String("scope_id", scopeID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list events")
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	httpjson.Write(w, http.StatusOK, list)
}
