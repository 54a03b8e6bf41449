package companyRepo

import (
	"context"
	"time"

	"wheelhouse/database"
	"wheelhouse/database/repository"
	"wheelhouse/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CompanyRepository is read-only from the booking core's side.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*models.RentalCompany, error)
}

type MongoCompanyRepo struct {
	coll *mongo.Collection
}

func NewMongoCompanyRepo() CompanyRepository {
	return &MongoCompanyRepo{coll: database.DB().Collection("companies")}
}

func (r *MongoCompanyRepo) GetByID(ctx context.Context, id string) (*models.RentalCompany, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var company models.RentalCompany
	if err := repository.FindOneByID(ctx, r.coll, id, &company); err != nil {
		return nil, err
	}
	return &company, nil
}
