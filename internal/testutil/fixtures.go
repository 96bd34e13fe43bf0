// internal/testutil/fixtures.go

package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/schedhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateEvent inserts a planning-status event and returns it with its
// generated ID.
func (f *Fixtures) CreateEvent(ctx context.Context, scopeID, title string) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:              primitive.NewObjectID(),
		ScopeID:         scopeID,
		Title:           title,
		TitleCI:         text.Fold(title),
		MinParticipants: 1,
		Status:          models.EventPlanning,
		CreatedBy:       "fixture",
		ShareCode:       primitive.NewObjectID().Hex(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return ev
}

// CreateEventWithCapacity inserts an event with a maximum participant count.
func (f *Fixtures) CreateEventWithCapacity(ctx context.Context, scopeID, title string, max int) models.Event {
	f.t.Helper()

	ev := f.CreateEvent(ctx, scopeID, title)
	_, err := f.db.Collection("events").UpdateByID(ctx, ev.ID,
		map[string]any{"$set": map[string]any{"max_participants": max}})
	if err != nil {
		f.t.Fatalf("failed to set event capacity: %v", err)
	}
	ev.MaxParticipants = &max
	return ev
}

// CreateSignup inserts a signup record for the given event and user.
func (f *Fixtures) CreateSignup(ctx context.Context, eventID primitive.ObjectID, userID, status string) models.Signup {
	f.t.Helper()

	su := models.Signup{
		ID:       primitive.NewObjectID(),
		EventID:  eventID,
		UserID:   userID,
		Status:   status,
		JoinedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("signups").InsertOne(ctx, su); err != nil {
		f.t.Fatalf("failed to create test signup: %v", err)
	}
	return su
}

// SubmitAvailability inserts available-state records for a user on each of
// the given dates.
func (f *Fixtures) SubmitAvailability(ctx context.Context, scopeID, userID string, dates ...string) {
	f.t.Helper()

	docs := make([]any, 0, len(dates))
	now := time.Now().UTC()
	for _, d := range dates {
		docs = append(docs, models.Availability{
			ID:        primitive.NewObjectID(),
			ScopeID:   scopeID,
			UserID:    userID,
			Date:      d,
			State:     models.AvailabilityAvailable,
			CreatedAt: now,
		})
	}
	if len(docs) == 0 {
		return
	}
	if _, err := f.db.Collection("availabilities").InsertMany(ctx, docs); err != nil {
		f.t.Fatalf("failed to create test availability: %v", err)
	}
}
