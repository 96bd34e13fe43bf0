// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/schedhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/schedhub/internal/domain/models"
	"github.com/dalemusser/schedhub/internal/domain/schedule"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = errors.New("event not found")
	// ErrDateAlreadySet: the event left planning already; a confirmed date
	// is immutable through this store.
	ErrDateAlreadySet  = errors.New("event date is already confirmed")
	ErrDuplicateShares = errors.New("share code collision")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return e, nil
}

// GetByShareCode resolves an event from the opaque token embedded in links.
func (s *Store) GetByShareCode(ctx context.Context, code string) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"share_code": code}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return e, nil
}

// Create inserts a new planning-status event. Title is folded for
// case-insensitive lookups; the description is sanitized because it arrives
// as user-authored text and is echoed back to presentation layers.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.Title = strings.TrimSpace(e.Title)
	e.TitleCI = text.Fold(e.Title)
	e.Description = htmlsanitize.Sanitize(e.Description)
	e.Status = models.EventPlanning
	e.Date = nil
	e.ShareCode = uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Event{}, ErrDuplicateShares
		}
		return models.Event{}, err
	}
	return e, nil
}

// ConfirmDate moves a planning event to confirmed with the chosen date.
// The filter matches only planning-status documents, so the transition
// happens at most once; a second confirm sees zero matches and reports
// ErrDateAlreadySet (or ErrNotFound if the event never existed).
func (s *Store) ConfirmDate(ctx context.Context, id primitive.ObjectID, date string) error {
	if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.EventPlanning},
		bson.M{"$set": bson.M{
			"date":       date,
			"status":     models.EventConfirmed,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrDateAlreadySet
	}
	return nil
}

// ArchivePast flips events whose confirmed date is strictly before the given
// day to archived. Archived is terminal. The external sweep that calls this
// must never touch signups; status is all that changes here.
// Returns the number of events archived.
func (s *Store) ArchivePast(ctx context.Context, today string) (int64, error) {
	if _, err := time.Parse(schedule.DateLayout, today); err != nil {
		return 0, err
	}
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status": models.EventConfirmed,
			"date":   bson.M{"$lt": today},
		},
		bson.M{"$set": bson.M{
			"status":     models.EventArchived,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ListByScope returns the scope's events, newest first.
func (s *Store) ListByScope(ctx context.Context, scopeID string) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"scope_id": scopeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Delete removes an event by ID. Returns the number of documents deleted
// (0 or 1). Signup cleanup belongs to the caller via signupstore.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
