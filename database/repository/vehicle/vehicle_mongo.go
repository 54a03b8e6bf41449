package vehicleRepo

import (
	"context"
	"fmt"
	"time"

	"wheelhouse/database"
	"wheelhouse/database/repository"
	"wheelhouse/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoVehicleRepo implements VehicleRepository using MongoDB.
type MongoVehicleRepo struct {
	coll *mongo.Collection
}

func NewMongoVehicleRepo() VehicleRepository {
	repo := &MongoVehicleRepo{coll: database.DB().Collection("vehicles")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		fmt.Printf("failed to create vehicle indexes: %v\n", err)
	}
	return repo
}

func (r *MongoVehicleRepo) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var vehicle models.Vehicle
	if err := repository.FindOneByID(ctx, r.coll, id, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *MongoVehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := repository.UpdateVersioned(ctx, r.coll, vehicle.ID, vehicle.Version, bookingFields(vehicle)); err != nil {
		return err
	}
	vehicle.Version++
	return nil
}

// bookingFields limits the write to what booking transitions own; the rest of the
// document belongs to vehicle management.
func bookingFields(vehicle *models.Vehicle) bson.M {
	blackout := vehicle.BlackoutDates
	if blackout == nil {
		blackout = []string{}
	}
	return bson.M{
		"$set": bson.M{
			"status":         vehicle.Status,
			"blackout_dates": blackout,
			"trips":          vehicle.Trips,
			"updated_at":     vehicle.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}
}

func (r *MongoVehicleRepo) RemoveBlackoutDates(ctx context.Context, id string, dates []string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$pullAll": bson.M{"blackout_dates": dates},
		"$inc":     bson.M{"version": 1},
		"$set":     bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error releasing blackout dates on vehicle %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
