// Command seed fills a development database with rental companies, customers, drivers and vehicles.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"wheelhouse/config"
	"wheelhouse/database"
	"wheelhouse/models"

	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	config.LoadConfig()
	database.InitDB()
	db := database.DB()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, name := range []string{"companies", "users", "drivers", "vehicles"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear %s collection: %v", name, err)
		}
	}

	cities := []string{"lahore", "karachi", "islamabad"}
	policies := []models.CancellationPolicy{models.PolicyFlexible, models.PolicyModerate, models.PolicyStrict}
	carNames := []string{"Toyota Corolla", "Honda Civic", "Suzuki Alto", "Toyota Hilux", "Kia Sportage"}
	vehiclesPerCompany := 5

	var companies, drivers, vehicles []interface{}
	now := time.Now().UTC()

	for i, city := range cities {
		companyID := fmt.Sprintf("company-%d", i+1)
		companies = append(companies, models.RentalCompany{
			ID:    companyID,
			Name:  fmt.Sprintf("%s Car Rentals", city),
			Email: fmt.Sprintf("ops@%s-rentals.example.com", city),
		})

		drivers = append(drivers, models.Driver{
			ID:            fmt.Sprintf("driver-%d", i+1),
			CompanyID:     companyID,
			Name:          fmt.Sprintf("Driver %d", i+1),
			BlackoutDates: []string{},
			UpdatedAt:     now,
		})

		for j := 0; j < vehiclesPerCompany; j++ {
			v := models.Vehicle{
				ID:                 fmt.Sprintf("vehicle-%d-%d", i+1, j+1),
				CompanyID:          companyID,
				Name:               carNames[j%len(carNames)],
				Status:             models.VehicleAvailable,
				BlackoutDates:      []string{},
				DynamicPricing:     &models.DynamicPricing{BaseRate: float64(3000 + 500*rand.Intn(10))},
				CancellationPolicy: policies[rand.Intn(len(policies))],
				UpdatedAt:          now,
			}
			// Every other car runs a promotion for the next two weeks.
			if j%2 == 0 {
				v.Discount = &models.Discount{Percent: 10, ValidUntil: now.AddDate(0, 0, 14)}
			}
			if j == vehiclesPerCompany-1 {
				v.BufferMinutes = 180
			}
			vehicles = append(vehicles, v)
		}
	}

	users := []interface{}{
		models.User{ID: "user-1", Name: "Ayesha Khan", Email: "ayesha@example.com"},
		models.User{ID: "user-2", Name: "Bilal Ahmed", Email: "bilal@example.com"},
		models.User{ID: "user-3", Name: "Blocked Customer", Email: "blocked@example.com", Blocked: true},
	}

	for name, docs := range map[string][]interface{}{
		"companies": companies,
		"users":     users,
		"drivers":   drivers,
		"vehicles":  vehicles,
	} {
		res, err := db.Collection(name).InsertMany(ctx, docs)
		if err != nil {
			log.Fatalf("Failed to insert %s: %v", name, err)
		}
		fmt.Printf("Inserted %d %s\n", len(res.InsertedIDs), name)
	}
}
