// internal/app/store/availability/availabilitystore.go
package availabilitystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/schedhub/internal/domain/models"
	"github.com/dalemusser/schedhub/internal/domain/schedule"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var errBadState = errors.New(`state must be "available" or "unavailable"`)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("availabilities")}
}

// DateState is one (date, state) answer inside a period submission.
type DateState struct {
	Date  string // "2006-01-02"
	State string // models.AvailabilityAvailable | models.AvailabilityUnavailable
}

// ReplacePeriod replaces all of a member's answers inside [start, end]
// (inclusive) with the given set. Submissions are whole-period: the member's
// previous answers in the range are deleted first, so un-ticking a date
// works without any patch protocol.
func (s *Store) ReplacePeriod(ctx context.Context, scopeID, userID, start, end string, answers []DateState) error {
	if _, err := time.Parse(schedule.DateLayout, start); err != nil {
		return err
	}
	if _, err := time.Parse(schedule.DateLayout, end); err != nil {
		return err
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(answers))
	for _, a := range answers {
		if a.State != models.AvailabilityAvailable && a.State != models.AvailabilityUnavailable {
			return errBadState
		}
		if _, err := time.Parse(schedule.DateLayout, a.Date); err != nil {
			return err
		}
		docs = append(docs, models.Availability{
			ScopeID:   scopeID,
			UserID:    userID,
			Date:      a.Date,
			State:     a.State,
			CreatedAt: now,
		})
	}

	_, err := s.c.DeleteMany(ctx, bson.M{
		"scope_id": scopeID,
		"user_id":  userID,
		"date":     bson.M{"$gte": start, "$lte": end},
	})
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	_, err = s.c.InsertMany(ctx, docs)
	return err
}

// ListAvailable returns the scope's "available" answers within [start, end]
// inclusive, as the (date, member) pairs the ranking algorithm consumes.
func (s *Store) ListAvailable(ctx context.Context, scopeID, start, end string) ([]schedule.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "user_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{
		"scope_id": scopeID,
		"state":    models.AvailabilityAvailable,
		"date":     bson.M{"$gte": start, "$lte": end},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Availability
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	entries := make([]schedule.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, schedule.Entry{Date: row.Date, UserID: row.UserID})
	}
	return entries, nil
}

// ListByUser returns all of one member's answers in a range, any state.
func (s *Store) ListByUser(ctx context.Context, scopeID, userID, start, end string) ([]models.Availability, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{
		"scope_id": scopeID,
		"user_id":  userID,
		"date":     bson.M{"$gte": start, "$lte": end},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Availability
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountDistinctMembers returns how many distinct members have answered
// anything in the scope. Feeds the full-attendance tag when the caller does
// not supply a registered-member count.
func (s *Store) CountDistinctMembers(ctx context.Context, scopeID string) (int, error) {
	ids, err := s.c.Distinct(ctx, "user_id", bson.M{"scope_id": scopeID})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// DeleteByScope removes every answer in a scope (tenant teardown).
// Returns the number of documents deleted.
func (s *Store) DeleteByScope(ctx context.Context, scopeID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"scope_id": scopeID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
