// internal/app/roster/roster.go

// Package roster owns the signup lifecycle for events: capacity enforcement,
// waitlisting, and promotion when a confirmed member cancels.
//
// The decision logic lives here; persistence is behind the Store interface
// so the same transitions run against Mongo in production and an in-memory
// store in tests. Signups are mutated by this package only.
package roster

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/schedhub/internal/app/system/eventlock"
	"github.com/dalemusser/schedhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Sentinel errors the Store implementations translate their backend's
// not-found/duplicate conditions into.
var (
	ErrEventNotFound   = errors.New("event not found")
	ErrSignupNotFound  = errors.New("signup not found")
	ErrDuplicateSignup = errors.New("member already has a signup for this event")
)

// Store is the persistence surface the roster needs. Every method is a
// single backend operation; the roster composes them into an atomic unit by
// holding the event's lock across a whole Join or Cancel.
type Store interface {
	GetEvent(ctx context.Context, eventID primitive.ObjectID) (models.Event, error)
	GetSignup(ctx context.Context, eventID primitive.ObjectID, userID string) (models.Signup, error)
	CountConfirmed(ctx context.Context, eventID primitive.ObjectID) (int64, error)
	InsertSignup(ctx context.Context, s models.Signup) (models.Signup, error)
	DeleteSignup(ctx context.Context, eventID primitive.ObjectID, userID string) error
	UpdateSignupStatus(ctx context.Context, id primitive.ObjectID, status string) error
	// FirstWaitlisted returns the waitlisted signup with the earliest
	// joined-at (ties broken by insertion order), or ErrSignupNotFound.
	FirstWaitlisted(ctx context.Context, eventID primitive.ObjectID) (models.Signup, error)
}

// Join outcomes. Already-signed-up and event-not-found are expected results
// of repeated or stale user action, not errors.
const (
	JoinConfirmed         = "confirmed"
	JoinWaitlisted        = "waitlisted"
	JoinAlreadyConfirmed  = "already_confirmed"
	JoinAlreadyWaitlisted = "already_waitlisted"
	JoinEventNotFound     = "event_not_found"
)

// Cancel outcomes.
const (
	CancelCancelled = "cancelled"
	CancelPromoted  = "promoted"
	CancelNotFound  = "not_found"
)

// CancelResult reports what a cancellation did. PromotedUserID is set only
// when Outcome is CancelPromoted.
type CancelResult struct {
	Outcome        string `json:"outcome"`
	PromotedUserID string `json:"promoted_user_id,omitempty"`
}

// Roster drives signup state transitions for all events.
type Roster struct {
	store Store
	locks *eventlock.Locker
	log   *zap.Logger
}

// New constructs a Roster over the given store. lockWait bounds how long a
// Join/Cancel waits for its event's lock before failing with
// eventlock.ErrBusy.
func New(store Store, lockWait time.Duration, logger *zap.Logger) *Roster {
	return &Roster{
		store: store,
		locks: eventlock.New(lockWait),
		log:   logger,
	}
}

// Join signs userID up for the event, waitlisting them when the event is at
// capacity. The check-then-insert sequence runs under the event's lock so
// two concurrent joins cannot both see a free slot.
func (r *Roster) Join(ctx context.Context, eventID primitive.ObjectID, userID string) (string, error) {
	release, err := r.locks.Acquire(ctx, eventID.Hex())
	if err != nil {
		return "", err
	}
	defer release()

	// A member holds at most one signup per event; an existing one is
	// reported, never replaced. (Cancellation deletes the record, so a
	// returning member never hits this branch.)
	existing, err := r.store.GetSignup(ctx, eventID, userID)
	switch {
	case err == nil:
		if existing.Status == models.SignupConfirmed {
			return JoinAlreadyConfirmed, nil
		}
		return JoinAlreadyWaitlisted, nil
	case !errors.Is(err, ErrSignupNotFound):
		return "", err
	}

	event, err := r.store.GetEvent(ctx, eventID)
	if errors.Is(err, ErrEventNotFound) {
		return JoinEventNotFound, nil
	}
	if err != nil {
		return "", err
	}

	status := models.SignupConfirmed
	if event.MaxParticipants != nil {
		confirmed, err := r.store.CountConfirmed(ctx, eventID)
		if err != nil {
			return "", err
		}
		if confirmed >= int64(*event.MaxParticipants) {
			status = models.SignupWaitlisted
		}
	}

	_, err = r.store.InsertSignup(ctx, models.Signup{
		EventID:  eventID,
		UserID:   userID,
		Status:   status,
		JoinedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}

	r.log.Info("signup recorded",
		zap.String("event_id", eventID.Hex()),
		zap.String("user_id", userID),
		zap.String("status", status))

	if status == models.SignupWaitlisted {
		return JoinWaitlisted, nil
	}
	return JoinConfirmed, nil
}

// Cancel removes userID's signup. When a confirmed member leaves, the
// earliest waitlisted member is promoted in place (joined-at unchanged);
// cancelling a waitlisted signup promotes nobody. The delete-then-promote
// sequence runs under the event's lock so one vacated slot produces exactly
// one promotion.
func (r *Roster) Cancel(ctx context.Context, eventID primitive.ObjectID, userID string) (CancelResult, error) {
	release, err := r.locks.Acquire(ctx, eventID.Hex())
	if err != nil {
		return CancelResult{}, err
	}
	defer release()

	signup, err := r.store.GetSignup(ctx, eventID, userID)
	if errors.Is(err, ErrSignupNotFound) {
		return CancelResult{Outcome: CancelNotFound}, nil
	}
	if err != nil {
		return CancelResult{}, err
	}

	if err := r.store.DeleteSignup(ctx, eventID, userID); err != nil {
		return CancelResult{}, err
	}

	r.log.Info("signup cancelled",
		zap.String("event_id", eventID.Hex()),
		zap.String("user_id", userID),
		zap.String("was", signup.Status))

	if signup.Status != models.SignupConfirmed {
		return CancelResult{Outcome: CancelCancelled}, nil
	}

	next, err := r.store.FirstWaitlisted(ctx, eventID)
	if errors.Is(err, ErrSignupNotFound) {
		return CancelResult{Outcome: CancelCancelled}, nil
	}
	if err != nil {
		return CancelResult{}, err
	}

	if err := r.store.UpdateSignupStatus(ctx, next.ID, models.SignupConfirmed); err != nil {
		return CancelResult{}, err
	}

	r.log.Info("waitlisted member promoted",
		zap.String("event_id", eventID.Hex()),
		zap.String("user_id", next.UserID))

	return CancelResult{Outcome: CancelPromoted, PromotedUserID: next.UserID}, nil
}
