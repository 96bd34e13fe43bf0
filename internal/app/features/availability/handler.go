// internal/app/features/availability/handler.go

// Package availability exposes the JSON endpoints members use to say which
// dates work for them. Submissions are whole-period replacements, so the
// client never needs a diff protocol to un-tick a date.
package availability

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	availabilitystore "github.com/dalemusser/schedhub/internal/app/store/availability"
	"github.com/dalemusser/schedhub/internal/app/system/httpjson"
	"github.com/dalemusser/schedhub/internal/app/system/timeouts"
	"github.com/dalemusser/schedhub/internal/domain/models"
)

// Handler holds dependencies for availability endpoints.
type Handler struct {
	Avail *availabilitystore.Store
	Log   *zap.Logger
}

// NewHandler constructs an availability Handler.
func NewHandler(avail *availabilitystore.Store, logger *zap.Logger) *Handler {
	return &Handler{Avail: avail, Log: logger}
}

// Submit handles PUT /availability/{scopeID}/{userID}.
//
// The body carries the inclusive period plus the member's answers for dates
// inside it. All previous answers in the period are replaced.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	scopeID := chi.URLParam(r, "scopeID")
	userID := chi.URLParam(r, "userID")
	if scopeID == "" || userID == "" {
		httpjson.Error(w, http.StatusBadRequest, "scope and user are required")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "availability.submit")
	defer cancel()

	answers := make([]availabilitystore.DateState, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, availabilitystore.DateState{Date: a.Date, State: a.State})
	}

	if err := h.Avail.ReplacePeriod(ctx, scopeID, userID, req.Start, req.End, answers); err != nil {
		h.Log.Error("availability: replace period failed",
			zap.String("scope_id", scopeID),
			zap.String("user_id", userID),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not save availability")
		return
	}

	httpjson.Write(w, http.StatusOK, submitResponse{
		ScopeID: scopeID,
		UserID:  userID,
		Saved:   len(answers),
	})
}

// List handles GET /availability/{scopeID}?start=...&end=...&user=...
//
// Without a user filter it returns every answer in the range for the scope;
// with one it returns just that member's answers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scopeID := chi.URLParam(r, "scopeID")
	if scopeID == "" {
		httpjson.Error(w, http.StatusBadRequest, "scope is required")
		return
	}

	start, end, msg := parseRange(r)
	if msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}
	userID := r.URL.Query().Get("user")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "availability.list")
	defer cancel()

	if userID != "" {
		rows, err := h.Avail.ListByUser(ctx, scopeID, userID, start, end)
		if err != nil {
			h.Log.Error("availability: list by user failed",
				zap.String("scope_id", scopeID), zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "could not load availability")
			return
		}
		resp := listResponse{ScopeID: scopeID, Start: start, End: end, Answers: []answerEntry{}}
		for _, row := range rows {
			resp.Answers = append(resp.Answers, answerEntry{
				UserID: row.UserID, Date: row.Date, State: row.State,
			})
		}
		httpjson.Write(w, http.StatusOK, resp)
		return
	}

	entries, err := h.Avail.ListAvailable(ctx, scopeID, start, end)
	if err != nil {
		h.Log.Error("availability: list failed",
			zap.String("scope_id", scopeID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load availability")
		return
	}

	resp := listResponse{ScopeID: scopeID, Start: start, End: end, Answers: []answerEntry{}}
	for _, e := range entries {
		resp.Answers = append(resp.Answers, answerEntry{
			UserID: e.UserID, Date: e.Date, State: models.AvailabilityAvailable,
		})
	}
	httpjson.Write(w, http.StatusOK, resp)
}

// Purge handles DELETE /availability/{scopeID}. Removes every answer in the
// scope; used when a group is torn down or wants a clean slate.
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	scopeID := chi.URLParam(r, "scopeID")
	if scopeID == "" {
		httpjson.Error(w, http.StatusBadRequest, "scope is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "availability.purge")
	defer cancel()

	deleted, err := h.Avail.DeleteByScope(ctx, scopeID)
	if err != nil {
		h.Log.Error("availability: purge failed",
			zap.String("scope_id", scopeID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not purge availability")
		return
	}

	h.Log.Info("availability purged",
		zap.String("scope_id", scopeID),
		zap.Int64("deleted", deleted))

	httpjson.Write(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
