// internal/domain/models/availability.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Availability states. A member either can or cannot make a date; absence of
// a document means the member has not answered for that date.
const (
	AvailabilityAvailable   = "available"
	AvailabilityUnavailable = "unavailable"
)

// Availability is one member's answer for one calendar date within a scope.
//
// NOTE:
//   - Exactly one document per (scope_id, user_id, date); enforced by a
//     unique index.
//   - Dates are local-naive calendar dates stored as "YYYY-MM-DD" strings.
//     No timezone conversion happens anywhere in the system.
//   - Resubmitting a period replaces all of the member's documents in that
//     period wholesale (ReplacePeriod), never patches them.
type Availability struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ScopeID string             `bson:"scope_id" json:"scope_id"` // tenant (server/group) boundary
	UserID  string             `bson:"user_id" json:"user_id"`   // opaque member id from the chat platform
	Date    string             `bson:"date" json:"date"`         // "2006-01-02"
	State   string             `bson:"state" json:"state"`       // "available" | "unavailable"

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
