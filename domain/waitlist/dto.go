package waitlist

import (
	"github.com/akeren/trustlink-waitlist/internal/models"
	"github.com/akeren/trustlink-waitlist/pkg/constants"
)

// RequiredSignupFields is reported verbatim when any of them is missing.
var RequiredSignupFields = []string{"name", "email", "phone", "actor_type"}

type SignupRequest struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"required,waitlist_email"`
	Phone          string  `json:"phone" validate:"required"`
	ActorType      string  `json:"actor_type" validate:"required,oneof=vendor buyer rider"`
	City           *string `json:"city"`
	ReferralSource *string `json:"referral_source"`
}

// NotifyRequest carries the optional notes for the notify mutation. A nil
// Notes keeps whatever is stored.
type NotifyRequest struct {
	Notes *string `json:"notes"`
}

type SignupResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ActorType string `json:"actor_type"`
	CreatedAt string `json:"created_at"`
}

type ListResponse struct {
	Total  int64                  `json:"total"`
	Count  int                    `json:"count"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Data   []models.WaitlistEntry `json:"data"`
}

type StatsResponse struct {
	Total       int64                   `json:"total"`
	ByActorType []models.ActorTypeCount `json:"by_actor_type"`
	TopCities   []models.CityCount      `json:"top_cities"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
	Rows        int
}

// ========================================
// Mappers
// ========================================

func ToWaitlistEntryModel(req *SignupRequest) *models.WaitlistEntry {
	if req == nil {
		return nil
	}
	return &models.WaitlistEntry{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		ActorType:      req.ActorType,
		City:           req.City,
		ReferralSource: req.ReferralSource,
	}
}

func ToSignupResponse(entry *models.WaitlistEntry) SignupResponse {
	if entry == nil {
		return SignupResponse{}
	}
	return SignupResponse{
		ID:        entry.ID,
		Name:      entry.Name,
		Email:     entry.Email,
		ActorType: entry.ActorType,
		CreatedAt: entry.CreatedAt.Format(constants.RFC3339DateTimeFormat),
	}
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
