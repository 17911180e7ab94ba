package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/companycrush/crush-backend/internal/db"
	svcErr "github.com/companycrush/crush-backend/internal/errors"
	"github.com/companycrush/crush-backend/internal/utils/pagination"
)

// SwipeRepository provides data access for swipes and matches. It is the
// sole writer of both tables.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// SwipeOutcome is the result of applying a swipe.
type SwipeOutcome struct {
	Matched bool
	Target  *db.User
}

// ApplySwipe records a swipe from actor to target and, on a mutual right
// swipe, creates the match — all in one transaction.
//
// Behavior:
//   - Both user rows are loaded inside the transaction, locked in id
//     order on MySQL (SELECT ... FOR UPDATE), serializing concurrent
//     swipes on the same pair. SQLite serializes writers on its own.
//   - The swipe row is a conditional append: ON CONFLICT DO NOTHING on
//     the (actor_id, target_id) composite key. Zero affected rows means
//     the pair was already swiped and surfaces Conflict, leaving all
//     state untouched. A pair row holds exactly one direction, so
//     swipedLeft and swipedRight stay disjoint structurally.
//   - A right swipe then tests the reverse right-swipe row. If present,
//     the canonical match row is inserted in the same transaction: either
//     both the swipe and the match commit, or neither does. The match
//     insert is itself idempotent (DO NOTHING), so a replayed detection
//     cannot double-create.
func (r *SwipeRepository) ApplySwipe(
	ctx context.Context,
	actorID, targetID uint64,
	liked bool,
) (SwipeOutcome, error) {
	var outcome SwipeOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pairQuery := tx
		if tx.Dialector.Name() == "mysql" {
			pairQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		loID, hiID := db.NormalizePair(actorID, targetID)
		var users []db.User
		if err := pairQuery.
			Where("id IN ?", []uint64{loID, hiID}).
			Order("id").
			Find(&users).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		var target *db.User
		actorFound := false
		for i := range users {
			if users[i].Expired(now) {
				continue
			}
			switch users[i].ID {
			case actorID:
				actorFound = true
			case targetID:
				target = &users[i]
			}
		}
		if !actorFound || target == nil {
			return svcErr.NotFound("user not found")
		}

		swipe := db.Swipe{ActorID: actorID, TargetID: targetID, Liked: liked}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&swipe)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return svcErr.Conflict("already swiped on this user")
		}

		if !liked {
			return nil
		}

		// mutual interest: had the target already right-swiped the actor?
		var reverse int64
		if err := tx.Model(&db.Swipe{}).
			Where("actor_id = ? AND target_id = ? AND liked = ?", targetID, actorID, true).
			Count(&reverse).Error; err != nil {
			return err
		}
		if reverse == 0 {
			return nil
		}

		a, b := db.NormalizePair(actorID, targetID)
		match := db.Match{UserAID: a, UserBID: b}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&match).Error; err != nil {
			return err
		}

		outcome.Matched = true
		outcome.Target = target
		return nil
	})

	return outcome, err
}

// Admirer is one row of the "who liked me" listing.
type Admirer struct {
	ActorID   uint64    `gorm:"column:actor_id"`
	Name      string    `gorm:"column:name"`
	Image     string    `gorm:"column:image"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// CountAdmirers returns how many live users have right-swiped the given
// user. Used as the DB fallback behind the Redis counter.
func (r *SwipeRepository) CountAdmirers(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Joins("JOIN users u ON u.id = s.actor_id").
		Where("s.target_id = ? AND s.liked = ?", userID, true).
		Where("u.expires_at > ?", time.Now().UTC()).
		Count(&count).Error
	return count, err
}

// ListAdmirers returns the users who right-swiped the given user, newest
// first, cursor-paginated.
func (r *SwipeRepository) ListAdmirers(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]Admirer, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, svcErr.InvalidArgument(err.Error())
	}

	query := r.db.WithContext(ctx).
		Table("swipes s").
		Select("s.actor_id, u.name, u.image, s.created_at").
		Joins("JOIN users u ON u.id = s.actor_id").
		Where("s.target_id = ? AND s.liked = ?", userID, true).
		Where("u.expires_at > ?", time.Now().UTC()).
		Order("s.created_at DESC, s.actor_id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(s.created_at < ? OR (s.created_at = ? AND s.actor_id < ?))",
			ts, ts, cursor.LastID,
		)
	}

	var admirers []Admirer
	if err := query.Scan(&admirers).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(admirers) > limit {
		admirers = admirers[:limit]
		last := admirers[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			LastID:      last.ActorID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
	}

	return admirers, nextToken, nil
}

// MatchRow is one resolved entry of a user's match list.
type MatchRow struct {
	UserID    uint64    `gorm:"column:user_id"`
	Name      string    `gorm:"column:name"`
	Image     string    `gorm:"column:image"`
	MatchedAt time.Time `gorm:"column:matched_at"`
}

// ListMatches resolves the given user's matches to partner summaries, in
// match-creation order, cursor-paginated.
func (r *SwipeRepository) ListMatches(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]MatchRow, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, svcErr.InvalidArgument(err.Error())
	}

	query := r.db.WithContext(ctx).
		Table("matches m").
		Select("u.id AS user_id, u.name, u.image, m.created_at AS matched_at").
		Joins("JOIN users u ON u.id = CASE WHEN m.user_a_id = ? THEN m.user_b_id ELSE m.user_a_id END", userID).
		Where("m.user_a_id = ? OR m.user_b_id = ?", userID, userID).
		Where("u.expires_at > ?", time.Now().UTC()).
		Order("m.created_at ASC, u.id ASC").
		Limit(limit + 1)

	if cursor.LastID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(m.created_at > ? OR (m.created_at = ? AND u.id > ?))",
			ts, ts, cursor.LastID,
		)
	}

	var rows []MatchRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			LastID:      last.UserID,
			CreatedUnix: last.MatchedAt.UnixMilli(),
		})
		nextToken = &token
	}

	return rows, nextToken, nil
}

// AreMatched reports whether the two users hold a match row.
func (r *SwipeRepository) AreMatched(ctx context.Context, x, y uint64) (bool, error) {
	a, b := db.NormalizePair(x, y)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}
