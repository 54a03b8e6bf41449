package models

import "time"

// Driver is an optional participant assigned to a booking.
type Driver struct {
	ID            string    `bson:"id" json:"id"`
	CompanyID     string    `bson:"company_id" json:"companyId"`
	Name          string    `bson:"name" json:"name"`
	BlackoutDates []string  `bson:"blackout_dates" json:"blackoutDates"`
	Version       int64     `bson:"version" json:"version"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}
