package models

import "time"

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleBooked      VehicleStatus = "booked"
	VehicleOngoing     VehicleStatus = "ongoing"
	VehicleMaintenance VehicleStatus = "maintenance"
)

type CancellationPolicy string

const (
	PolicyFlexible CancellationPolicy = "flexible"
	PolicyModerate CancellationPolicy = "moderate"
	PolicyStrict   CancellationPolicy = "strict"
)

type DynamicPricing struct {
	BaseRate float64 `bson:"base_rate" json:"baseRate"`
}

type Discount struct {
	Percent    float64   `bson:"percent" json:"percent"`
	ValidUntil time.Time `bson:"valid_until" json:"validUntil"`
}

// Vehicle is a rentable car. Status and BlackoutDates are written only by booking transitions.
type Vehicle struct {
	ID                 string             `bson:"id" json:"id"`
	CompanyID          string             `bson:"company_id" json:"companyId"`
	Name               string             `bson:"name" json:"name"`
	Status             VehicleStatus      `bson:"status" json:"status"`
	BlackoutDates      []string           `bson:"blackout_dates" json:"blackoutDates"`
	DynamicPricing     *DynamicPricing    `bson:"dynamic_pricing,omitempty" json:"dynamicPricing,omitempty"`
	Discount           *Discount          `bson:"discount,omitempty" json:"discount,omitempty"`
	BufferMinutes      int                `bson:"buffer_minutes,omitempty" json:"bufferMinutes,omitempty"`
	CancellationPolicy CancellationPolicy `bson:"cancellation_policy" json:"cancellationPolicy"`
	Trips              int                `bson:"trips" json:"trips"`
	IsDeleted          bool               `bson:"is_deleted" json:"isDeleted"`
	Version            int64              `bson:"version" json:"version"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// EffectiveBufferMinutes falls back to DefaultBufferMinutes when unset.
func (v *Vehicle) EffectiveBufferMinutes() int {
	if v.BufferMinutes <= 0 {
		return DefaultBufferMinutes
	}
	return v.BufferMinutes
}
