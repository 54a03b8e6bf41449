package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no document matches the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrVersionConflict is returned when a versioned write finds the stored version has moved on.
	ErrVersionConflict = errors.New("document version conflict")
)

// VersionFilter matches the document with the given id at the expected version.
// Documents written by other services may carry no version field; they count as version 0.
func VersionFilter(id string, expected int64) bson.M {
	if expected == 0 {
		return bson.M{
			"id": id,
			"$or": bson.A{
				bson.M{"version": int64(0)},
				bson.M{"version": bson.M{"$exists": false}},
			},
		}
	}
	return bson.M{"id": id, "version": expected}
}

// ReplaceVersioned replaces the document with the given id only when its stored version equals expected.
// Use it only for collections this service owns outright.
func ReplaceVersioned(ctx context.Context, coll *mongo.Collection, id string, expected int64, doc interface{}) error {
	res, err := coll.ReplaceOne(ctx, VersionFilter(id, expected), doc)
	if err != nil {
		return fmt.Errorf("error replacing %s %s: %w", coll.Name(), id, err)
	}
	return checkMatched(ctx, coll, id, expected, res.MatchedCount)
}

// UpdateVersioned applies update to the document with the given id only when its stored version equals expected.
// The update should carry its own $inc on version.
func UpdateVersioned(ctx context.Context, coll *mongo.Collection, id string, expected int64, update bson.M) error {
	res, err := coll.UpdateOne(ctx, VersionFilter(id, expected), update)
	if err != nil {
		return fmt.Errorf("error updating %s %s: %w", coll.Name(), id, err)
	}
	return checkMatched(ctx, coll, id, expected, res.MatchedCount)
}

func checkMatched(ctx context.Context, coll *mongo.Collection, id string, expected, matched int64) error {
	if matched > 0 {
		return nil
	}
	n, err := coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error checking %s %s: %w", coll.Name(), id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", coll.Name(), id, ErrNotFound)
	}
	return fmt.Errorf("%s %s at version %d: %w", coll.Name(), id, expected, ErrVersionConflict)
}

// FindOneByID decodes the document with the given id into out.
func FindOneByID(ctx context.Context, coll *mongo.Collection, id string, out interface{}) error {
	if err := coll.FindOne(ctx, bson.M{"id": id}).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%s %s: %w", coll.Name(), id, ErrNotFound)
		}
		return fmt.Errorf("error fetching %s with id %s: %w", coll.Name(), id, err)
	}
	return nil
}
