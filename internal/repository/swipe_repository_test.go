package repository_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/companycrush/crush-backend/internal/db"
	svcErr "github.com/companycrush/crush-backend/internal/errors"
	"github.com/companycrush/crush-backend/internal/repository"
)

// setup in-memory DB. Shared cache keyed by test name: every connection
// in the pool sees the same database, so tests may hit the DB from more
// than one goroutine.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func seedUser(t *testing.T, gdb *gorm.DB, id uint64, name, gender, preference string) {
	t.Helper()
	require.NoError(t, gdb.Create(&db.User{
		ID:         id,
		Name:       name,
		Image:      "https://images.example.com/" + name + ".jpg",
		Gender:     gender,
		Preference: preference,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}).Error)
}

func TestApplySwipe_LeftNoMatch(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewSwipeRepository(gdb)

	seedUser(t, gdb, 1, "amy", db.GenderGirl, db.PreferenceBoy)
	seedUser(t, gdb, 2, "ben", db.GenderBoy, db.PreferenceGirl)

	out, err := repo.ApplySwipe(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.False(t, out.Matched)

	var swipe db.Swipe
	require.NoError(t, gdb.First(&swipe).Error)
	assert.False(t, swipe.Liked)

	var matches int64
	gdb.Model(&db.Match{}).Count(&matches)
	assert.Zero(t, matches)
}

func TestApplySwipe_DuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewSwipeRepository(gdb)

	seedUser(t, gdb, 1, "amy", db.GenderGirl, db.PreferenceBoy)
	seedUser(t, gdb, 2, "ben", db.GenderBoy, db.PreferenceGirl)

	_, err := repo.ApplySwipe(ctx, 1, 2, true)
	require.NoError(t, err)

	// second swipe on same pair fails, whatever the direction
	_, err = repo.ApplySwipe(ctx, 1, 2, false)
	assert.ErrorIs(t, err, svcErr.ErrConflict)

	// rejected call leaves state unchanged: the row still says liked
	var swipe db.Swipe
	require.NoError(t, gdb.Where("actor_id = ? AND target_id = ?", 1, 2).First(&swipe).Error)
	assert.True(t, swipe.Liked)

	var count int64
	gdb.Model(&db.Swipe{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestApplySwipe_MutualRightCreatesMatch(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewSwipeRepository(gdb)

	seedUser(t, gdb, 1, "amy", db.GenderGirl, db.PreferenceBoy)
	seedUser(t, gdb, 2, "ben", db.GenderBoy, db.PreferenceGirl)

	out, err := repo.ApplySwipe(ctx, 1, 2, true)
	require.NoError(t, err)
	assert.False(t, out.Matched)

	out, err = repo.ApplySwipe(ctx, 2, 1, true)
	require.NoError(t, err)
	assert.True(t, out.Matched)
	require.NotNil(t, out.Target)
	assert.Equal(t, "amy", out.Target.Name)

	// one canonical row serves both sides
	var matches []db.Match
	require.NoError(t, gdb.Find(&matches).Error)
	require.Len(t, matches, 1)
	assert.Equal(t, uint64(1), matches[0].UserAID)
	assert.Equal(t, uint64(2), matches[0].UserBID)

	for _, id := range []uint64{1, 2} {
		ok, err := repo.AreMatched(ctx, id, 3-id)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

// Both sides right-swipe each other at the same moment. Whatever the
// interleaving, there must be exactly one canonical match row and at
// least one of the two calls must report the match — never zero rows,
// never two. SQLite allows a single writer at a time, so a swipe that
// loses the write lock is retried until it lands.
func TestApplySwipe_ConcurrentMutualRight(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewSwipeRepository(gdb)

	seedUser(t, gdb, 1, "amy", db.GenderGirl, db.PreferenceBoy)
	seedUser(t, gdb, 2, "ben", db.GenderBoy, db.PreferenceGirl)

	type result struct {
		outcome repository.SwipeOutcome
		err     error
	}
	results := make(chan result, 2)
	swipe := func(actorID, targetID uint64) {
		for {
			out, err := repo.ApplySwipe(ctx, actorID, targetID, true)
			if err != nil && strings.Contains(strings.ToLower(err.Error()), "lock") {
				time.Sleep(time.Millisecond)
				continue
			}
			results <- result{outcome: out, err: err}
			return
		}
	}

	go swipe(1, 2)
	go swipe(2, 1)

	matched := 0
	for i := 0; i < 2; i++ {
		res := <-results
		require.NoError(t, res.err)
		if res.outcome.Matched {
			matched++
		}
	}
	assert.GreaterOrEqual(t, matched, 1)

	var matches []db.Match
	require.NoError(t, gdb.Find(&matches).Error)
	require.Len(t, matches, 1)
	assert.Equal(t, uint64(1), matches[0].UserAID)
	assert.Equal(t, uint64(2), matches[0].UserBID)

	var swipes int64
	gdb.Model(&db.Swipe{}).Count(&swipes)
	assert.Equal(t, int64(2), swipes)
}

func TestApplySwipe_RightAfterLeftIsNoMatch(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewSwipeRepository(gdb)

	seedUser(t, gdb, 1, "amy", db.GenderGirl, db.PreferenceBoy)
	seedUser(t, gdb, 2, "ben", db.GenderBoy, db.PreferenceGirl)

	_, err := repo.ApplySwipe(ctx, 1, 2, true)
	require.NoError(t, err)

	out, err := repo.ApplySwipe(ctx, 2, 1, false)
	require.NoError(t, err)
	assert.False(t, out.Matched)

	var matches int64
	gdb.Model(&db.Match{}).Count(&matches)
	assert.Zero(t, matches)

	// amy cannot swipe ben again
	_, err = repo.ApplySwipe(ctx, 1, 2, true)
	assert.ErrorIs(t, err, svcErr.ErrConflict)
}

func TestApplySwipe_MissingUser(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewSwipeRepository(gdb)

	seedUser(t, gdb, 1, "amy", db.GenderGirl, db.PreferenceBoy)

	_, err := repo.ApplySwipe(ctx, 1, 42, true)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = repo.ApplySwipe(ctx, 42, 1, true)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	var swipes int64
	gdb.Model(&db.Swipe{}).Count(&swipes)
	assert.Zero(t, swipes)
}

func TestAdmirers(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewSwipeRepository(gdb)

	seedUser(t, gdb, 1, "amy", db.GenderGirl, db.PreferenceBoth)
	seedUser(t, gdb, 2, "ben", db.GenderBoy, db.PreferenceGirl)
	seedUser(t, gdb, 3, "cal", db.GenderBoy, db.PreferenceGirl)

	_, err := repo.ApplySwipe(ctx, 2, 1, true)
	require.NoError(t, err)
	_, err = repo.ApplySwipe(ctx, 3, 1, false)
	require.NoError(t, err)

	count, err := repo.CountAdmirers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	admirers, next, err := repo.ListAdmirers(ctx, 1, nil, 10)
	require.NoError(t, err)
	require.Len(t, admirers, 1)
	assert.Equal(t, uint64(2), admirers[0].ActorID)
	assert.Equal(t, "ben", admirers[0].Name)
	assert.Nil(t, next)
}

func TestListMatchesOrderAndPagination(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewSwipeRepository(gdb)

	seedUser(t, gdb, 1, "amy", db.GenderGirl, db.PreferenceBoth)
	seedUser(t, gdb, 2, "ben", db.GenderBoy, db.PreferenceGirl)
	seedUser(t, gdb, 3, "cal", db.GenderBoy, db.PreferenceGirl)
	seedUser(t, gdb, 4, "dan", db.GenderBoy, db.PreferenceGirl)

	for _, partner := range []uint64{2, 3, 4} {
		_, err := repo.ApplySwipe(ctx, partner, 1, true)
		require.NoError(t, err)
		out, err := repo.ApplySwipe(ctx, 1, partner, true)
		require.NoError(t, err)
		require.True(t, out.Matched)
	}

	// first page of two, then the rest via cursor
	page1, next, err := repo.ListMatches(ctx, 1, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	assert.Equal(t, uint64(2), page1[0].UserID)
	assert.Equal(t, uint64(3), page1[1].UserID)

	page2, next2, err := repo.ListMatches(ctx, 1, next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, uint64(4), page2[0].UserID)
	assert.Nil(t, next2)

	// the partner sees the mirror image
	benMatches, _, err := repo.ListMatches(ctx, 2, nil, 10)
	require.NoError(t, err)
	require.Len(t, benMatches, 1)
	assert.Equal(t, uint64(1), benMatches[0].UserID)
}
