package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/membership/models"
)

// GormStore is the relational MembershipStore.
type GormStore struct {
	db     *gorm.DB
	tracer trace.Tracer
	// locking is set on the copy handed to Transaction callbacks.
	locking bool
}

// NewGormStore wraps an initialised gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:     db,
		tracer: otel.Tracer("membership/repository"),
	}
}

func (s *GormStore) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "membership.store."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrMembershipNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Create inserts m and fills in its id and timestamps.
func (s *GormStore) Create(ctx context.Context, m *models.Membership) (err error) {
	ctx, span := s.startSpan(ctx, "create",
		attribute.String("membership.owner_id", m.OwnerID),
		attribute.String("membership.type", string(m.MembershipType)),
	)
	defer func() { endSpan(span, err) }()

	if err = s.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMembership
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	span.SetAttributes(attribute.Int64("membership.id", int64(m.ID)))
	return nil
}

func (s *GormStore) FindByOwnerAndType(ctx context.Context, ownerID string, t models.MembershipType) (_ *models.Membership, err error) {
	ctx, span := s.startSpan(ctx, "find_by_owner_and_type",
		attribute.String("membership.owner_id", ownerID),
		attribute.String("membership.type", string(t)),
	)
	defer func() { endSpan(span, err) }()

	var m models.Membership
	err = s.db.WithContext(ctx).
		Where("owner_id = ? AND membership_type = ?", ownerID, t).
		First(&m).Error
	if err != nil {
		return nil, translateFindError(err)
	}
	return &m, nil
}

// FindByID loads one row. Inside Transaction the row stays locked until commit.
func (s *GormStore) FindByID(ctx context.Context, id uint) (_ *models.Membership, err error) {
	ctx, span := s.startSpan(ctx, "find_by_id",
		attribute.Int64("membership.id", int64(id)),
		attribute.Bool("membership.locked", s.locking),
	)
	defer func() { endSpan(span, err) }()

	q := s.db.WithContext(ctx)
	if s.locking {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var m models.Membership
	if err = q.First(&m, id).Error; err != nil {
		return nil, translateFindError(err)
	}
	return &m, nil
}

func (s *GormStore) FindAllByOwner(ctx context.Context, ownerID string) (_ []models.Membership, err error) {
	ctx, span := s.startSpan(ctx, "find_all_by_owner", attribute.String("membership.owner_id", ownerID))
	defer func() { endSpan(span, err) }()

	items := []models.Membership{}
	if err = s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	span.SetAttributes(attribute.Int("membership.count", len(items)))
	return items, nil
}

func (s *GormStore) DeleteByID(ctx context.Context, id uint) (err error) {
	ctx, span := s.startSpan(ctx, "delete_by_id", attribute.Int64("membership.id", int64(id)))
	defer func() { endSpan(span, err) }()

	if err = s.db.WithContext(ctx).Delete(&models.Membership{}, id).Error; err != nil {
		return fmt.Errorf("delete membership %d: %w", id, err)
	}
	return nil
}

// Save writes the mutable columns of m back and refreshes UpdatedAt.
func (s *GormStore) Save(ctx context.Context, m *models.Membership) (err error) {
	ctx, span := s.startSpan(ctx, "save",
		attribute.Int64("membership.id", int64(m.ID)),
		attribute.Int("membership.point", m.Point),
	)
	defer func() { endSpan(span, err) }()

	m.UpdatedAt = time.Now()
	res := s.db.WithContext(ctx).Model(m).Select("point", "updated_at").Updates(m)
	if err = res.Error; err != nil {
		return fmt.Errorf("save membership %d: %w", m.ID, err)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// mysql reports unchanged rows as unaffected, so confirm the row is really gone
	var count int64
	if err = s.db.WithContext(ctx).Model(&models.Membership{}).Where("id = ?", m.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("save membership %d: %w", m.ID, err)
	}
	if count == 0 {
		err = ErrMembershipNotFound
	}
	return err
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx MembershipStore) error) error {
	ctx, span := s.startSpan(ctx, "transaction")
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, tracer: s.tracer, locking: true})
	})
	endSpan(span, err)
	return err
}

func translateFindError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMembershipNotFound
	}
	return fmt.Errorf("query membership: %w", err)
}

// isUniqueViolation recognises duplicate key errors from every supported dialect.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
