package crush_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/companycrush/crush-backend/internal/app"
	"github.com/companycrush/crush-backend/internal/auth"
	"github.com/companycrush/crush-backend/internal/cache"
	"github.com/companycrush/crush-backend/internal/config"
	"github.com/companycrush/crush-backend/internal/db"
	svcErr "github.com/companycrush/crush-backend/internal/errors"
	"github.com/companycrush/crush-backend/internal/service/crush"
)

//
// Test helpers
//

// seedUsers inserts a small deterministic population:
//   - alice (girl, likes boys)
//   - bob   (boy, likes girls)
//   - carol (girl, likes boys)
//   - dave  (boy, likes boys)  — incompatible with alice both ways
func seedUsers(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	users := []db.User{
		{ID: 1, Name: "alice", Image: "https://img.example.com/alice.jpg", Gender: db.GenderGirl, Preference: db.PreferenceBoy, ExpiresAt: time.Now().Add(24 * time.Hour)},
		{ID: 2, Name: "bob", Image: "https://img.example.com/bob.jpg", Gender: db.GenderBoy, Preference: db.PreferenceGirl, ExpiresAt: time.Now().Add(24 * time.Hour)},
		{ID: 3, Name: "carol", Image: "https://img.example.com/carol.jpg", Gender: db.GenderGirl, Preference: db.PreferenceBoy, ExpiresAt: time.Now().Add(24 * time.Hour)},
		{ID: 4, Name: "dave", Image: "https://img.example.com/dave.jpg", Gender: db.GenderBoy, Preference: db.PreferenceBoy, ExpiresAt: time.Now().Add(24 * time.Hour)},
	}
	require.NoError(t, gdb.Create(&users).Error)
}

// setupService spins up an in-memory SQLite DB, applies migrations,
// seeds test data, starts a miniredis, and wires everything into a
// crush service. Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) (*crush.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	seedUsers(t, gdb)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Users.TTL)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(gdb, redisCache, tokens, logger)
	return crush.NewService(appCtx), gdb
}

//
// Tests
//

// TestFeedAppliesMutualPreference: alice (girl, likes boys) must see bob
// (boy, likes girls) but never carol (girl) nor dave (boy who likes boys).
func TestFeedAppliesMutualPreference(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	resp, err := svc.SelectCandidates(ctx, 1, nil, 0)
	require.NoError(t, err)

	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, uint64(2), resp.Candidates[0].ID)
	assert.Equal(t, "bob", resp.Candidates[0].Name)
	assert.Equal(t, db.GenderBoy, resp.Candidates[0].Gender)
}

// TestFeedExcludesSwiped: once alice swipes bob, he leaves her feed in
// both directions of swipe.
func TestFeedExcludesSwiped(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Swipe(ctx, 1, &crush.SwipeRequest{TargetUserID: 2, Direction: crush.DirectionLeft})
	require.NoError(t, err)

	resp, err := svc.SelectCandidates(ctx, 1, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Candidates)

	// the exclusion is one-directional: alice still appears for bob
	bobFeed, err := svc.SelectCandidates(ctx, 2, nil, 0)
	require.NoError(t, err)
	var ids []uint64
	for _, c := range bobFeed.Candidates {
		ids = append(ids, c.ID)
	}
	assert.Contains(t, ids, uint64(1))
}

func TestFeedUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.SelectCandidates(ctx, 99, nil, 0)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

// TestSwipeRightThenMatch covers the §2 happy path: bob right-swipes
// alice with no effect, then alice right-swipes bob and both sides see
// the match.
func TestSwipeRightThenMatch(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	first, err := svc.Swipe(ctx, 2, &crush.SwipeRequest{TargetUserID: 1, Direction: crush.DirectionRight})
	require.NoError(t, err)
	assert.False(t, first.Matched)
	assert.Nil(t, first.MatchedUser)

	second, err := svc.Swipe(ctx, 1, &crush.SwipeRequest{TargetUserID: 2, Direction: crush.DirectionRight})
	require.NoError(t, err)
	assert.True(t, second.Matched)
	require.NotNil(t, second.MatchedUser)
	assert.Equal(t, uint64(2), second.MatchedUser.ID)
	assert.Equal(t, "bob", second.MatchedUser.Name)

	var matches []db.Match
	require.NoError(t, gdb.Find(&matches).Error)
	require.Len(t, matches, 1)
	assert.Equal(t, uint64(1), matches[0].UserAID)
	assert.Equal(t, uint64(2), matches[0].UserBID)
}

func TestSwipeValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Swipe(ctx, 1, &crush.SwipeRequest{TargetUserID: 2, Direction: "up"})
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	_, err = svc.Swipe(ctx, 1, &crush.SwipeRequest{TargetUserID: 1, Direction: crush.DirectionRight})
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	_, err = svc.Swipe(ctx, 1, &crush.SwipeRequest{TargetUserID: 99, Direction: crush.DirectionRight})
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

// TestSwipeIdempotentByRejection: a repeated swipe fails Conflict and
// changes nothing, so clients can retry a timed-out swipe safely.
func TestSwipeIdempotentByRejection(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	_, err := svc.Swipe(ctx, 1, &crush.SwipeRequest{TargetUserID: 2, Direction: crush.DirectionRight})
	require.NoError(t, err)

	_, err = svc.Swipe(ctx, 1, &crush.SwipeRequest{TargetUserID: 2, Direction: crush.DirectionRight})
	assert.ErrorIs(t, err, svcErr.ErrConflict)

	var count int64
	gdb.Model(&db.Swipe{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

// TestSwipeLeftBlocksMatch: bob likes alice, alice passes on bob. No
// match, and bob's earlier like cannot be replayed by alice.
func TestSwipeLeftBlocksMatch(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	_, err := svc.Swipe(ctx, 2, &crush.SwipeRequest{TargetUserID: 1, Direction: crush.DirectionRight})
	require.NoError(t, err)

	resp, err := svc.Swipe(ctx, 1, &crush.SwipeRequest{TargetUserID: 2, Direction: crush.DirectionLeft})
	require.NoError(t, err)
	assert.False(t, resp.Matched)

	var leftSwipe db.Swipe
	require.NoError(t, gdb.Where("actor_id = ? AND target_id = ?", 1, 2).First(&leftSwipe).Error)
	assert.False(t, leftSwipe.Liked)

	var matches int64
	gdb.Model(&db.Match{}).Count(&matches)
	assert.Zero(t, matches)

	_, err = svc.Swipe(ctx, 1, &crush.SwipeRequest{TargetUserID: 2, Direction: crush.DirectionRight})
	assert.ErrorIs(t, err, svcErr.ErrConflict)
}

// TestCountAdmirersCacheFirst verifies the cache-first count: first call
// hits the DB and seeds Redis, a later right swipe bumps the cached
// value without another DB read.
func TestCountAdmirersCacheFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Swipe(ctx, 2, &crush.SwipeRequest{TargetUserID: 1, Direction: crush.DirectionRight})
	require.NoError(t, err)

	resp1, err := svc.CountAdmirers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp1.Count)

	// dave also likes alice; the cached counter is incremented in place
	_, err = svc.Swipe(ctx, 4, &crush.SwipeRequest{TargetUserID: 1, Direction: crush.DirectionRight})
	require.NoError(t, err)

	resp2, err := svc.CountAdmirers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp2.Count)
}

func TestListAdmirers(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Swipe(ctx, 2, &crush.SwipeRequest{TargetUserID: 1, Direction: crush.DirectionRight})
	require.NoError(t, err)
	_, err = svc.Swipe(ctx, 4, &crush.SwipeRequest{TargetUserID: 1, Direction: crush.DirectionLeft})
	require.NoError(t, err)

	resp, err := svc.ListAdmirers(ctx, 1, nil, 0)
	require.NoError(t, err)
	require.Len(t, resp.Admirers, 1)
	assert.Equal(t, uint64(2), resp.Admirers[0].ID)
	assert.Equal(t, "bob", resp.Admirers[0].Name)
}
