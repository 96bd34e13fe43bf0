// internal/domain/models/signup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Signup statuses. There is no cancelled status: cancelling deletes the
// document, and a returning member starts over with a fresh signup.
const (
	SignupConfirmed  = "confirmed"
	SignupWaitlisted = "waitlisted"
)

// Signup is the per-member, per-event attendance record.
//
// NOTE:
//   - Exactly one document per (event_id, user_id); enforced by a unique
//     index.
//   - Only the roster package mutates signups. Waitlist order is total by
//     (joined_at, _id) ascending; promotion always takes the earliest and
//     keeps JoinedAt unchanged so the member does not lose their place in
//     any later accounting.
type Signup struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID  string             `bson:"user_id" json:"user_id"`
	Status  string             `bson:"status" json:"status"` // "confirmed" | "waitlisted"

	JoinedAt time.Time `bson:"joined_at" json:"joined_at"`
}
