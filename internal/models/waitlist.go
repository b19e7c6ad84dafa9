package models

import "time"

// Actor types accepted on signup.
const (
	ActorTypeVendor = "vendor"
	ActorTypeBuyer  = "buyer"
	ActorTypeRider  = "rider"
)

// ValidActorTypes is ordered as it is reported to clients.
var ValidActorTypes = []string{ActorTypeVendor, ActorTypeBuyer, ActorTypeRider}

func IsValidActorType(v string) bool {
	for _, t := range ValidActorTypes {
		if v == t {
			return true
		}
	}
	return false
}

type WaitlistEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Email          string    `gorm:"not null;uniqueIndex:idx_waitlist_email" json:"email"`
	Phone          string    `gorm:"not null" json:"phone"`
	ActorType      string    `gorm:"not null;index:idx_waitlist_actor_type" json:"actor_type"`
	City           *string   `json:"city"`
	ReferralSource *string   `json:"referral_source"`
	Notified       bool      `gorm:"not null;default:false" json:"notified"`
	Notes          *string   `json:"notes"`
	CreatedAt      time.Time `gorm:"not null;index:idx_waitlist_created_at" json:"created_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist"
}

// ActorTypeCount is a row of the waitlist_stats view.
type ActorTypeCount struct {
	ActorType string `json:"actor_type"`
	Count     int64  `json:"count"`
}

// CityCount is a row of the waitlist_by_city view.
type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}
