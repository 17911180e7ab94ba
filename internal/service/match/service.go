package match

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/companycrush/crush-backend/internal/app"
	"github.com/companycrush/crush-backend/internal/auth"
	svcErr "github.com/companycrush/crush-backend/internal/errors"
	"github.com/companycrush/crush-backend/internal/repository"
	"github.com/companycrush/crush-backend/internal/server"
	"github.com/companycrush/crush-backend/internal/service/crush"
)

// Service resolves a user's match set into presentable summaries.
// Read-only; all mutation of match state happens in the swipe processor.
type Service struct {
	appCtx    *app.AppContext
	userRepo  *repository.UserRepository
	swipeRepo *repository.SwipeRepository
}

// NewService creates a new match service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		userRepo:  repository.NewUserRepository(appCtx.DB),
		swipeRepo: repository.NewSwipeRepository(appCtx.DB),
	}
}

// MatchSummary is the presentable projection of one match partner.
type MatchSummary struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	UnixTimestamp int64  `json:"unix_timestamp"`
}

// ListResponse is one page of a user's matches.
type ListResponse struct {
	Matches             []MatchSummary `json:"matches"`
	NextPaginationToken *string        `json:"next_pagination_token,omitempty"`
}

// ListMatches resolves the user's matches, in match-creation order.
// NotFound if the user is absent or expired.
func (s *Service) ListMatches(ctx context.Context, userID uint64, paginationToken *string, limit int) (*ListResponse, error) {
	s.appCtx.Logger.Debug("ListMatches called", "user", userID)

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = crush.DefaultPageSize
	} else if limit > crush.MaxPageSize {
		limit = crush.MaxPageSize
	}

	rows, nextToken, err := s.swipeRepo.ListMatches(ctx, userID, paginationToken, limit)
	if err != nil {
		s.appCtx.Logger.Error("ListMatches failed", "user", userID, "err", err)
		return nil, err
	}

	resp := &ListResponse{Matches: make([]MatchSummary, 0, len(rows))}
	for _, row := range rows {
		resp.Matches = append(resp.Matches, MatchSummary{
			ID:            row.UserID,
			Name:          row.Name,
			Image:         row.Image,
			UnixTimestamp: row.MatchedAt.UnixMilli(),
		})
	}
	resp.NextPaginationToken = nextToken
	return resp, nil
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		server.Error(w, svcErr.NotFound("user not found"))
		return
	}

	var token *string
	if t := r.URL.Query().Get("pagination_token"); t != "" {
		token = &t
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	resp, err := s.ListMatches(r.Context(), userID, token, limit)
	if err != nil {
		server.Error(w, err)
		return
	}
	server.JSON(w, http.StatusOK, resp)
}

// Registrar ties the match service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the match service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the match routes to the router.
func (reg *Registrar) Register(r chi.Router) {
	service := NewService(reg.appCtx)
	r.With(auth.RequireAuth(reg.appCtx.Tokens)).Get("/api/matches", service.handleList)
}
