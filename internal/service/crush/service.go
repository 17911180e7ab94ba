package crush

import (
	"context"

	"github.com/companycrush/crush-backend/internal/app"
	svcErr "github.com/companycrush/crush-backend/internal/errors"
	"github.com/companycrush/crush-backend/internal/repository"
)

// Page size bounds for feed, admirer and match listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Swipe directions.
const (
	DirectionLeft  = "left"
	DirectionRight = "right"
)

// Service implements the swipe-and-match engine: the candidate feed, the
// swipe processor, and the admirer surfaces. It contains the business
// logic on top of the repository and cache layers; transport adapters in
// this package translate HTTP to these methods.
type Service struct {
	appCtx    *app.AppContext
	userRepo  *repository.UserRepository
	swipeRepo *repository.SwipeRepository
}

// NewService creates a new crush service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		userRepo:  repository.NewUserRepository(appCtx.DB),
		swipeRepo: repository.NewSwipeRepository(appCtx.DB),
	}
}

// CandidateSummary is the minimal projection of a feed candidate. Swipe
// history and preference internals of third parties are never exposed.
type CandidateSummary struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Gender string `json:"gender"`
}

// FeedResponse is one page of the swipeable feed.
type FeedResponse struct {
	Candidates          []CandidateSummary `json:"candidates"`
	NextPaginationToken *string            `json:"next_pagination_token,omitempty"`
}

// SelectCandidates returns the swipeable feed for the requesting user.
//
// Behavior:
//   - NotFound if the requester does not exist (or has expired).
//   - Excludes self and every already-swiped target, both directions.
//   - Applies the mutual-preference filter on top of the exclusion set.
//   - Cursor-paginated, pure read.
func (s *Service) SelectCandidates(ctx context.Context, userID uint64, paginationToken *string, limit int) (*FeedResponse, error) {
	s.appCtx.Logger.Debug("SelectCandidates called", "user", userID)

	requester, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, nextToken, err := s.userRepo.SelectCandidates(ctx, requester, paginationToken, clampLimit(limit))
	if err != nil {
		s.appCtx.Logger.Error("SelectCandidates failed", "user", userID, "err", err)
		return nil, err
	}

	resp := &FeedResponse{Candidates: make([]CandidateSummary, 0, len(users))}
	for _, u := range users {
		resp.Candidates = append(resp.Candidates, CandidateSummary{
			ID:     u.ID,
			Name:   u.Name,
			Image:  u.Image,
			Gender: u.Gender,
		})
	}
	resp.NextPaginationToken = nextToken

	s.appCtx.Logger.Debug("SelectCandidates result", "user", userID, "count", len(resp.Candidates))
	return resp, nil
}

// MatchedUser is the summary of the partner returned when a swipe
// completes a match.
type MatchedUser struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// SwipeRequest is a single swipe action against a target user.
type SwipeRequest struct {
	TargetUserID uint64 `json:"target_user_id"`
	Direction    string `json:"direction"`
}

// SwipeResponse reports whether the swipe completed a match. MatchedUser
// is null unless Matched is true.
type SwipeResponse struct {
	Matched     bool         `json:"matched"`
	MatchedUser *MatchedUser `json:"matched_user"`
}

// Swipe validates and applies a single swipe action.
//
// Behavior:
//   - InvalidArgument for a direction outside {left, right} or a
//     self-swipe; NotFound if either user is missing; Conflict if the
//     pair was already swiped (state unchanged — retries fail fast
//     instead of duplicating).
//   - A left swipe records the rejection and nothing else.
//   - A right swipe tests whether the target had already right-swiped
//     the actor; if so the match is created atomically with the swipe,
//     and the partner summary is returned.
//   - On a right swipe the target's cached admirer count is bumped.
func (s *Service) Swipe(ctx context.Context, actorID uint64, req *SwipeRequest) (*SwipeResponse, error) {
	s.appCtx.Logger.Debug("Swipe called", "actor", actorID, "target", req.TargetUserID, "direction", req.Direction)

	if req.Direction != DirectionLeft && req.Direction != DirectionRight {
		return nil, svcErr.InvalidArgument(`direction must be "left" or "right"`)
	}
	if req.TargetUserID == 0 {
		return nil, svcErr.InvalidArgument("target_user_id is required")
	}
	if actorID == req.TargetUserID {
		return nil, svcErr.InvalidArgument("cannot swipe on yourself")
	}

	liked := req.Direction == DirectionRight
	outcome, err := s.swipeRepo.ApplySwipe(ctx, actorID, req.TargetUserID, liked)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := s.appCtx.RedisCache.IncrAdmirerCount(ctx, req.TargetUserID); err != nil {
			s.appCtx.Logger.Warn("admirer count increment failed", "target", req.TargetUserID, "err", err)
		}
	}

	resp := &SwipeResponse{Matched: outcome.Matched}
	if outcome.Matched {
		resp.MatchedUser = &MatchedUser{
			ID:    outcome.Target.ID,
			Name:  outcome.Target.Name,
			Image: outcome.Target.Image,
		}
		s.appCtx.Logger.Info("matched", "actor", actorID, "target", req.TargetUserID)
	}
	return resp, nil
}

// AdmirerCountResponse carries the number of users who right-swiped the
// requester.
type AdmirerCountResponse struct {
	Count int64 `json:"count"`
}

// CountAdmirers returns how many users right-swiped the given user.
// Cache-first strategy:
//  1. Attempts to read from Redis (admirers:count:userID).
//  2. On cache miss, falls back to the DB.
//  3. On DB fetch, updates Redis with the cache TTL.
func (s *Service) CountAdmirers(ctx context.Context, userID uint64) (*AdmirerCountResponse, error) {
	s.appCtx.Logger.Debug("CountAdmirers called", "user", userID)

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if n, ok, err := s.appCtx.RedisCache.GetAdmirerCount(ctx, userID); err == nil && ok {
		return &AdmirerCountResponse{Count: n}, nil
	}

	count, err := s.swipeRepo.CountAdmirers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.appCtx.RedisCache.UpdateAdmirerCount(ctx, userID, count); err != nil {
		s.appCtx.Logger.Warn("admirer count cache update failed", "user", userID, "err", err)
	}

	return &AdmirerCountResponse{Count: count}, nil
}

// AdmirerSummary is one entry of the "who liked me" listing.
type AdmirerSummary struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	UnixTimestamp int64  `json:"unix_timestamp"`
}

// AdmirerListResponse is one page of the "who liked me" listing.
type AdmirerListResponse struct {
	Admirers            []AdmirerSummary `json:"admirers"`
	NextPaginationToken *string          `json:"next_pagination_token,omitempty"`
}

// ListAdmirers returns the users who right-swiped the given user, newest
// first, cursor-paginated.
func (s *Service) ListAdmirers(ctx context.Context, userID uint64, paginationToken *string, limit int) (*AdmirerListResponse, error) {
	s.appCtx.Logger.Debug("ListAdmirers called", "user", userID)

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	admirers, nextToken, err := s.swipeRepo.ListAdmirers(ctx, userID, paginationToken, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	resp := &AdmirerListResponse{Admirers: make([]AdmirerSummary, 0, len(admirers))}
	for _, a := range admirers {
		resp.Admirers = append(resp.Admirers, AdmirerSummary{
			ID:            a.ActorID,
			Name:          a.Name,
			Image:         a.Image,
			UnixTimestamp: a.CreatedAt.UnixMilli(),
		})
	}
	resp.NextPaginationToken = nextToken
	return resp, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
