package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cppla/membership/models"
	"github.com/cppla/membership/repository"
)

// MembershipService holds the membership business rules. It keeps no state between calls;
// every operation receives the already authenticated owner identifier.
type MembershipService struct {
	store  repository.MembershipStore
	points PointCalculator
	log    *zap.Logger
}

// NewMembershipService wires a service. A nil logger disables logging.
func NewMembershipService(store repository.MembershipStore, points PointCalculator, log *zap.Logger) *MembershipService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MembershipService{store: store, points: points, log: log.Named("membership")}
}

// Register creates a membership of type t for ownerID unless one already exists.
func (s *MembershipService) Register(ctx context.Context, ownerID string, t models.MembershipType, initialPoints int) (*MembershipDto, error) {
	if initialPoints < 0 || initialPoints > models.MaxPoint {
		return nil, newMembershipError(KindPointOutOfRange)
	}

	_, err := s.store.FindByOwnerAndType(ctx, ownerID, t)
	switch {
	case err == nil:
		return nil, newMembershipError(KindDuplicateRegistration)
	case !errors.Is(err, repository.ErrMembershipNotFound):
		return nil, s.unknown("register", err)
	}

	m := &models.Membership{
		OwnerID:        ownerID,
		MembershipType: t,
		Point:          initialPoints,
	}
	if err := s.store.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicateMembership) {
			return nil, newMembershipError(KindDuplicateRegistration)
		}
		return nil, s.unknown("register", err)
	}

	s.log.Info("membership registered",
		zap.Uint("id", m.ID),
		zap.String("owner_id", ownerID),
		zap.String("type", string(t)),
		zap.Int("point", initialPoints),
	)
	return &MembershipDto{ID: m.ID, MembershipType: m.MembershipType}, nil
}

// ListForOwner returns every membership of ownerID. The result is never nil.
func (s *MembershipService) ListForOwner(ctx context.Context, ownerID string) ([]MembershipDetailResponse, error) {
	items, err := s.store.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.unknown("list", err)
	}
	out := make([]MembershipDetailResponse, 0, len(items))
	for i := range items {
		out = append(out, toDetail(&items[i]))
	}
	return out, nil
}

// GetDetail returns one membership. A missing id is reported before a foreign owner.
func (s *MembershipService) GetDetail(ctx context.Context, id uint, ownerID string) (*MembershipDetailResponse, error) {
	m, err := s.ownedMembership(ctx, s.store, id, ownerID, "get")
	if err != nil {
		return nil, err
	}
	detail := toDetail(m)
	return &detail, nil
}

// Remove deletes a membership owned by ownerID.
func (s *MembershipService) Remove(ctx context.Context, id uint, ownerID string) error {
	if _, err := s.ownedMembership(ctx, s.store, id, ownerID, "remove"); err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return s.unknown("remove", err)
	}
	s.log.Info("membership removed", zap.Uint("id", id), zap.String("owner_id", ownerID))
	return nil
}

// Accumulate adds the points earned for spendAmount to the membership balance.
// The read and the write happen in one store transaction holding the row lock.
// A balance that would leave [0, models.MaxPoint] is rejected and left untouched.
func (s *MembershipService) Accumulate(ctx context.Context, id uint, ownerID string, spendAmount int) error {
	if spendAmount < 0 {
		return newMembershipError(KindPointOutOfRange)
	}

	var balance, earned int
	err := s.store.Transaction(ctx, func(tx repository.MembershipStore) error {
		m, err := s.ownedMembership(ctx, tx, id, ownerID, "accumulate")
		if err != nil {
			return err
		}
		earned = s.points.CalculateAmount(spendAmount)
		if earned < 0 || m.Point < 0 || earned > models.MaxPoint-m.Point {
			return newMembershipError(KindPointOutOfRange)
		}
		m.Point += earned
		balance = m.Point
		if err := tx.Save(ctx, m); err != nil {
			if errors.Is(err, repository.ErrMembershipNotFound) {
				// removed between the locked read and the write
				return newMembershipError(KindNotFound)
			}
			return s.unknown("accumulate", err)
		}
		return nil
	})
	if err != nil {
		var me *MembershipError
		if errors.As(err, &me) {
			return me
		}
		return s.unknown("accumulate", err)
	}

	s.log.Info("membership points accumulated",
		zap.Uint("id", id),
		zap.String("owner_id", ownerID),
		zap.Int("amount", spendAmount),
		zap.Int("earned", earned),
		zap.Int("balance", balance),
	)
	return nil
}

func (s *MembershipService) ownedMembership(ctx context.Context, store repository.MembershipStore, id uint, ownerID, op string) (*models.Membership, error) {
	m, err := store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return nil, newMembershipError(KindNotFound)
		}
		return nil, s.unknown(op, err)
	}
	if !m.IsOwnedBy(ownerID) {
		return nil, newMembershipError(KindNotOwner)
	}
	return m, nil
}

func (s *MembershipService) unknown(op string, err error) *MembershipError {
	s.log.Error("membership operation failed", zap.String("op", op), zap.Error(err))
	return unknownError(op, err)
}
