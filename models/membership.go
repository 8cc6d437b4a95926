package models

import "time"

// MembershipType identifies the partner that issues points for a membership.
type MembershipType string

const (
	MembershipTypeNaver MembershipType = "NAVER"
	MembershipTypeLine  MembershipType = "LINE"
)

// MaxPoint bounds both a membership balance and a single request amount.
const MaxPoint = 1_000_000_000

var membershipTypeNames = map[MembershipType]string{
	MembershipTypeNaver: "네이버",
	MembershipTypeLine:  "라인",
}

// MembershipTypes returns every known type in a stable order.
func MembershipTypes() []MembershipType {
	return []MembershipType{MembershipTypeNaver, MembershipTypeLine}
}

// Valid reports whether t is one of the known partner types.
func (t MembershipType) Valid() bool {
	_, ok := membershipTypeNames[t]
	return ok
}

// DisplayName returns the human readable partner name, or the raw value for unknown types.
func (t MembershipType) DisplayName() string {
	if name, ok := membershipTypeNames[t]; ok {
		return name
	}
	return string(t)
}

// ParseMembershipType converts an upper-case partner name into a MembershipType.
func ParseMembershipType(s string) (MembershipType, bool) {
	t := MembershipType(s)
	return t, t.Valid()
}

// Membership is a per-owner, per-partner point account.
// At most one row exists for each (OwnerID, MembershipType) pair.
type Membership struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	MembershipType MembershipType `gorm:"size:20;not null;uniqueIndex:idx_membership_owner_type,priority:2" json:"membershipType"`
	OwnerID        string         `gorm:"size:64;not null;uniqueIndex:idx_membership_owner_type,priority:1" json:"-"`
	Point          int            `gorm:"not null;default:0" json:"point"`
	CreatedAt      time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

// IsOwnedBy reports whether ownerID is the stored owner.
func (m *Membership) IsOwnedBy(ownerID string) bool {
	return m.OwnerID == ownerID
}
