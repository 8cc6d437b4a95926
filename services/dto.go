package services

import (
	"time"

	"github.com/cppla/membership/models"
)

// MembershipDto is returned by Register.
type MembershipDto struct {
	ID             uint                  `json:"id"`
	MembershipType models.MembershipType `json:"membershipType"`
}

// MembershipDetailResponse is the read projection used by list and detail.
type MembershipDetailResponse struct {
	ID             uint                  `json:"id"`
	MembershipType models.MembershipType `json:"membershipType"`
	CreatedAt      time.Time             `json:"createdAt"`
	Point          int                   `json:"point"`
}

func toDetail(m *models.Membership) MembershipDetailResponse {
	return MembershipDetailResponse{
		ID:             m.ID,
		MembershipType: m.MembershipType,
		CreatedAt:      m.CreatedAt,
		Point:          m.Point,
	}
}
