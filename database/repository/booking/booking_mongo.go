package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	repo := &MongoBookingRepo{coll: database.DB().Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "from_time", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "to_time", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func statusIn(statuses []models.BookingStatus) bson.M {
	return bson.M{"$in": statuses}
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := repository.FindOneByID(ctx, r.coll, id, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *MongoBookingRepo) Find(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.CompanyID != "" {
		filter["company_id"] = f.CompanyID
	}
	if f.VehicleID != "" {
		filter["vehicle_id"] = f.VehicleID
	}
	if len(f.Statuses) > 0 {
		filter["status"] = statusIn(f.Statuses)
	}
	if !f.IncludeDeleted {
		filter["is_deleted"] = bson.M{"$ne": true}
	}
	return r.findMany(ctx, filter, "error listing bookings")
}

func (r *MongoBookingRepo) FindByVehicle(ctx context.Context, vehicleID string, statuses []models.BookingStatus) ([]models.Booking, error) {
	filter := bson.M{"vehicle_id": vehicleID, "status": statusIn(statuses)}
	return r.findMany(ctx, filter, "error finding vehicle bookings")
}

func (r *MongoBookingRepo) findMany(ctx context.Context, filter bson.M, errMsg string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "from_time", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", errMsg, err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	expected := booking.Version
	booking.Version++
	if err := repository.ReplaceVersioned(ctx, r.coll, booking.ID, expected, booking); err != nil {
		booking.Version = expected
		return err
	}
	return nil
}

func (r *MongoBookingRepo) MarkFlag(ctx context.Context, id string, flag models.ReminderFlag) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, string(flag): bson.M{"$ne": true}}
	update := bson.M{
		"$set": bson.M{string(flag): true, "updated_at": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("error setting %s on booking %s: %w", flag, id, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoBookingRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting booking %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoBookingRepo) FindDeliveryRemindersDue(ctx context.Context, now, until time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":                 models.BookingConfirmed,
		"from_time":              bson.M{"$gt": now, "$lte": until},
		"delivery_reminder_sent": bson.M{"$ne": true},
	}
	return r.findMany(ctx, filter, "error finding delivery reminders")
}

func (r *MongoBookingRepo) FindReturnRemindersDue(ctx context.Context, now, until time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":               models.BookingOngoing,
		"to_time":              bson.M{"$gt": now, "$lte": until},
		"return_reminder_sent": bson.M{"$ne": true},
	}
	return r.findMany(ctx, filter, "error finding return reminders")
}

func (r *MongoBookingRepo) FindOverdue(ctx context.Context, now time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":           models.BookingOngoing,
		"to_time":          bson.M{"$lt": now},
		"overdue_notified": bson.M{"$ne": true},
	}
	return r.findMany(ctx, filter, "error finding overdue bookings")
}

func (r *MongoBookingRepo) FindExpired(ctx context.Context, before time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":  statusIn([]models.BookingStatus{models.BookingConfirmed, models.BookingOngoing}),
		"to":      bson.M{"$lt": before},
		"to_time": bson.M{"$lt": before},
	}
	return r.findMany(ctx, filter, "error finding expired bookings")
}
