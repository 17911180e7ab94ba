package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/companycrush/crush-backend/internal/db"
	svcErr "github.com/companycrush/crush-backend/internal/errors"
	"github.com/companycrush/crush-backend/internal/utils/pagination"
)

// UserRepository provides data access for User records. Expired accounts
// are treated as absent everywhere: lookups miss them and the candidate
// query filters them, whether or not the janitor has purged the rows yet.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user. Display names are globally unique; a taken
// name surfaces as Conflict.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("name = ?", user.Name).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return svcErr.Conflict("a user with this name already exists")
	}

	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost the race against a concurrent registration
		return svcErr.Conflict("a user with this name already exists")
	}
	return err
}

// GetByID returns the user with the given id, or NotFound if absent or
// expired.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFoundf("user %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if user.Expired(time.Now().UTC()) {
		return nil, svcErr.NotFoundf("user %d not found", id)
	}
	return &user, nil
}

// GetByName returns the user with the given display name, or NotFound.
func (r *UserRepository) GetByName(ctx context.Context, name string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFoundf("user %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	if user.Expired(time.Now().UTC()) {
		return nil, svcErr.NotFoundf("user %q not found", name)
	}
	return &user, nil
}

// SelectCandidates returns the swipeable feed for the requester.
//
// Behavior:
//   - Excludes the requester and every user the requester has already
//     swiped on, in either direction.
//   - Applies the mutual-preference filter: a candidate's gender must
//     match the requester's preference, and the candidate's preference
//     must accept the requester's gender ("both" is a wildcard on each
//     side). The filter is per-requester: A may see B without B seeing A,
//     since exclusion sets are independent per direction.
//   - Ordered by id ASC with cursor-based pagination.
//   - Pure read, no side effects.
func (r *UserRepository) SelectCandidates(
	ctx context.Context,
	requester *db.User,
	paginationToken *string,
	limit int,
) ([]db.User, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, svcErr.InvalidArgument(err.Error())
	}

	now := time.Now().UTC()
	query := r.db.WithContext(ctx).
		Table("users u").
		Where("u.id <> ?", requester.ID).
		Where("u.expires_at > ?", now).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s
				WHERE s.actor_id = ?
				  AND s.target_id = u.id
			)`, requester.ID).
		Where("(u.preference = ? OR u.preference = ?)", db.PreferenceBoth, requester.Gender).
		Order("u.id ASC").
		Limit(limit + 1)

	if requester.Preference != db.PreferenceBoth {
		query = query.Where("u.gender = ?", requester.Preference)
	}

	if cursor.LastID > 0 {
		query = query.Where("u.id > ?", cursor.LastID)
	}

	var candidates []db.User
	if err := query.Find(&candidates).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(candidates) > limit {
		candidates = candidates[:limit]
		token, _ := pagination.Encode(pagination.Cursor{
			LastID: candidates[limit-1].ID,
		})
		nextToken = &token
	}

	return candidates, nextToken, nil
}

// PurgeExpired deletes users whose expiry has passed, together with the
// swipe and match rows that reference them. Returns the number of
// purged accounts.
func (r *UserRepository) PurgeExpired(ctx context.Context) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var ids []uint64
		if err := tx.Model(&db.User{}).
			Where("expires_at <= ?", now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("actor_id IN ? OR target_id IN ?", ids, ids).
			Delete(&db.Swipe{}).Error; err != nil {
			return fmt.Errorf("purging swipes: %w", err)
		}
		if err := tx.Where("user_a_id IN ? OR user_b_id IN ?", ids, ids).
			Delete(&db.Match{}).Error; err != nil {
			return fmt.Errorf("purging matches: %w", err)
		}

		res := tx.Where("id IN ?", ids).Delete(&db.User{})
		if res.Error != nil {
			return fmt.Errorf("purging users: %w", res.Error)
		}
		purged = res.RowsAffected
		return nil
	})
	return purged, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
