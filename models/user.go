// models/user.go
package models

// User is a renting customer.
type User struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	FCMToken string `bson:"fcm_token,omitempty" json:"-"`
	Blocked  bool   `bson:"blocked" json:"blocked"`
}

// RentalCompany owns vehicles and drivers.
type RentalCompany struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	FCMToken string `bson:"fcm_token,omitempty" json:"-"`
}
