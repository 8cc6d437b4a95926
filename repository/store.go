package repository

import (
	"context"
	"errors"

	"github.com/cppla/membership/models"
)

var (
	// ErrMembershipNotFound is returned when no row matches a lookup.
	ErrMembershipNotFound = errors.New("membership not found")
	// ErrDuplicateMembership is returned when Create violates the (owner, type) unique index.
	ErrDuplicateMembership = errors.New("membership already exists for owner and type")
)

// MembershipStore persists memberships. Implementations assign ids and timestamps.
type MembershipStore interface {
	Create(ctx context.Context, m *models.Membership) error
	FindByOwnerAndType(ctx context.Context, ownerID string, t models.MembershipType) (*models.Membership, error)
	FindByID(ctx context.Context, id uint) (*models.Membership, error)
	// FindAllByOwner returns rows in insertion order; an owner without rows yields an empty slice.
	FindAllByOwner(ctx context.Context, ownerID string) ([]models.Membership, error)
	// DeleteByID does not fail when the row is already gone.
	DeleteByID(ctx context.Context, id uint) error
	Save(ctx context.Context, m *models.Membership) error
	// Transaction runs fn as one unit of work. FindByID on tx locks the row until fn returns.
	Transaction(ctx context.Context, fn func(tx MembershipStore) error) error
}
