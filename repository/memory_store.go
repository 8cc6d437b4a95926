package repository

import (
	"context"
	"sync"
	"time"

	"github.com/cppla/membership/models"
)

// MemoryStore keeps memberships in process memory. It is safe for concurrent use.
// Writes made by a failed Transaction callback are not rolled back.
type MemoryStore struct {
	txMu sync.Mutex

	mu     sync.RWMutex
	nextID uint
	rows   map[uint]models.Membership
	now    func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[uint]models.Membership),
		now:  time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.OwnerID == m.OwnerID && row.MembershipType == m.MembershipType {
			return ErrDuplicateMembership
		}
	}

	s.nextID++
	now := s.now()
	m.ID = s.nextID
	m.CreatedAt = now
	m.UpdatedAt = now
	s.rows[m.ID] = *m
	return nil
}

func (s *MemoryStore) FindByOwnerAndType(_ context.Context, ownerID string, t models.MembershipType) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.rows {
		if row.OwnerID == ownerID && row.MembershipType == t {
			found := row
			return &found, nil
		}
	}
	return nil, ErrMembershipNotFound
}

func (s *MemoryStore) FindByID(_ context.Context, id uint) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, ErrMembershipNotFound
	}
	return &row, nil
}

func (s *MemoryStore) FindAllByOwner(_ context.Context, ownerID string) ([]models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []models.Membership{}
	// ids are handed out sequentially, so walking them keeps insertion order
	for id := uint(1); id <= s.nextID; id++ {
		if row, ok := s.rows[id]; ok && row.OwnerID == ownerID {
			items = append(items, row)
		}
	}
	return items, nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id uint) error {
	s.mu.Lock()
	delete(s.rows, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Save(_ context.Context, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[m.ID]
	if !ok {
		return ErrMembershipNotFound
	}
	row.Point = m.Point
	row.UpdatedAt = s.now()
	s.rows[m.ID] = row
	m.UpdatedAt = row.UpdatedAt
	return nil
}

// Transaction serialises callbacks, which is enough to make read-modify-write cycles atomic
// with respect to each other.
func (s *MemoryStore) Transaction(_ context.Context, fn func(tx MembershipStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}
