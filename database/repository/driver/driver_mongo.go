package driverRepo

import (
	"context"
	"fmt"
	"time"

	"wheelhouse/database"
	"wheelhouse/database/repository"
	"wheelhouse/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoDriverRepo struct {
	coll *mongo.Collection
}

func NewMongoDriverRepo() DriverRepository {
	return &MongoDriverRepo{coll: database.DB().Collection("drivers")}
}

func (r *MongoDriverRepo) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var driver models.Driver
	if err := repository.FindOneByID(ctx, r.coll, id, &driver); err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *MongoDriverRepo) Update(ctx context.Context, driver *models.Driver) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := repository.UpdateVersioned(ctx, r.coll, driver.ID, driver.Version, blackoutFields(driver)); err != nil {
		return err
	}
	driver.Version++
	return nil
}

// blackoutFields writes only the driver's blackout dates.
func blackoutFields(driver *models.Driver) bson.M {
	blackout := driver.BlackoutDates
	if blackout == nil {
		blackout = []string{}
	}
	return bson.M{
		"$set": bson.M{
			"blackout_dates": blackout,
			"updated_at":     driver.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}
}

func (r *MongoDriverRepo) RemoveBlackoutDates(ctx context.Context, id string, dates []string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$pullAll": bson.M{"blackout_dates": dates},
		"$inc":     bson.M{"version": 1},
		"$set":     bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error releasing blackout dates on driver %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("driver %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
