// Package doctors contains the doctor and specialization API clients.
package doctors

import (
	"time"

	"github.com/wolfman30/medcare-portal/internal/resource"
)

// Specialization is a medical specialty doctors are grouped under.
type Specialization struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Doctor is a practitioner profile.
type Doctor struct {
	ID              string                       `json:"_id,omitempty"`
	FullName        string                       `json:"fullName"`
	Email           string                       `json:"email,omitempty"`
	Phone           string                       `json:"phone,omitempty"`
	Specialization  resource.Ref[Specialization] `json:"specialization"`
	ExperienceYears int                          `json:"experience,omitempty"`
	ConsultationFee float64                      `json:"consultationFee,omitempty"`
	Bio             string                       `json:"bio,omitempty"`
	IsActive        bool                         `json:"isActive"`
	CreatedAt       *time.Time                   `json:"createdAt,omitempty"`
}

// Details is the aggregated view served by /{id}/details.
type Details struct {
	Doctor
	TotalPatients     int     `json:"totalPatients"`
	UpcomingSchedules int     `json:"upcomingSchedules"`
	Rating            float64 `json:"rating"`
}

// ActiveState is what the toggle endpoint returns.
type ActiveState struct {
	ID       string `json:"_id"`
	IsActive bool   `json:"isActive"`
}
