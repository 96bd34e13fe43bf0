// internal/app/store/signups/signupstore.go
package signupstore

// Terminology: Member Identifiers
//   - UserID / user_id: the opaque member id supplied by the chat platform
//     (not an ObjectID; this service never mints user ids)
//   - EventID / event_id: the MongoDB ObjectID of the event document

import (
	"context"
	"time"

	"github.com/dalemusser/schedhub/internal/app/roster"
	"github.com/dalemusser/schedhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the Mongo implementation of roster.Store. It also carries the
// events collection so the roster can resolve an event inside the same
// locked operation.
type Store struct {
	c      *mongo.Collection
	events *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("signups"),
		events: db.Collection("events"),
	}
}

func (s *Store) GetEvent(ctx context.Context, eventID primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.events.FindOne(ctx, bson.M{"_id": eventID}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Event{}, roster.ErrEventNotFound
		}
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) GetSignup(ctx context.Context, eventID primitive.ObjectID, userID string) (models.Signup, error) {
	var sg models.Signup
	err := s.c.FindOne(ctx, bson.M{"event_id": eventID, "user_id": userID}).Decode(&sg)
	if err == mongo.ErrNoDocuments {
		return models.Signup{}, roster.ErrSignupNotFound
	}
	if err != nil {
		return models.Signup{}, err
	}
	return sg, nil
}

func (s *Store) CountConfirmed(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"event_id": eventID,
		"status":   models.SignupConfirmed,
	})
}

func (s *Store) InsertSignup(ctx context.Context, sg models.Signup) (models.Signup, error) {
	sg.ID = primitive.NewObjectID()
	if sg.JoinedAt.IsZero() {
		sg.JoinedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, sg); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Signup{}, roster.ErrDuplicateSignup
		}
		return models.Signup{}, err
	}
	return sg, nil
}

func (s *Store) DeleteSignup(ctx context.Context, eventID primitive.ObjectID, userID string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return roster.ErrSignupNotFound
	}
	return nil
}

func (s *Store) UpdateSignupStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	// Status only; joined_at is deliberately untouched so a promoted member
	// keeps their original queue position.
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return roster.ErrSignupNotFound
	}
	return nil
}

// FirstWaitlisted returns the earliest waitlisted signup for the event.
// Sort is (joined_at, _id) ascending; the _id tie-break keeps the order
// total even when two joins land on the same millisecond.
func (s *Store) FirstWaitlisted(ctx context.Context, eventID primitive.ObjectID) (models.Signup, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}})
	var sg models.Signup
	err := s.c.FindOne(ctx, bson.M{
		"event_id": eventID,
		"status":   models.SignupWaitlisted,
	}, opts).Decode(&sg)
	if err == mongo.ErrNoDocuments {
		return models.Signup{}, roster.ErrSignupNotFound
	}
	if err != nil {
		return models.Signup{}, err
	}
	return sg, nil
}

// ListByEvent returns all signups for an event, confirmed first, each block
// ordered by join time. Used by the roster view.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Signup, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "status", Value: 1}, // "confirmed" < "waitlisted"
		{Key: "joined_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var signups []models.Signup
	if err := cur.All(ctx, &signups); err != nil {
		return nil, err
	}
	return signups, nil
}

// DeleteByEvent removes all signups for an event (event deletion cleanup).
// Returns the number of documents deleted.
func (s *Store) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
