// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event lifecycle statuses.
//
//	planning  → confirmed (date chosen, exactly once)
//	planning  → archived  (swept after the fact without ever confirming)
//	confirmed → archived  (terminal)
const (
	EventPlanning  = "planning"
	EventConfirmed = "confirmed"
	EventArchived  = "archived"
)

// Event is a scheduled (or being-scheduled) gathering inside a scope.
//
// NOTE:
//   - Signups are not embedded here; they live in the signups collection,
//     one document per (event_id, user_id).
//   - MaxParticipants nil means unlimited capacity.
//   - Date is nil until the organizer confirms a candidate; once set it is
//     immutable through this service.
type Event struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ScopeID     string             `bson:"scope_id" json:"scope_id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Description string             `bson:"description" json:"description"`

	MinParticipants int     `bson:"min_participants" json:"min_participants"`
	MaxParticipants *int    `bson:"max_participants,omitempty" json:"max_participants,omitempty"`
	Date            *string `bson:"date,omitempty" json:"date,omitempty"` // "2006-01-02", set on confirm

	Status          string   `bson:"status" json:"status"`
	CreatedBy       string   `bson:"created_by" json:"created_by"`
	RequiredMembers []string `bson:"required_members,omitempty" json:"required_members,omitempty"`

	// ShareCode is an opaque token the chat layer embeds in links back to
	// this event.
	ShareCode string `bson:"share_code" json:"share_code"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
