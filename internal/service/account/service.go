package account

import (
	"context"
	"strings"
	"time"

	"github.com/companycrush/crush-backend/internal/app"
	"github.com/companycrush/crush-backend/internal/config"
	"github.com/companycrush/crush-backend/internal/db"
	svcErr "github.com/companycrush/crush-backend/internal/errors"
	"github.com/companycrush/crush-backend/internal/repository"
)

// Service handles registration, login and profile reads. Identity is
// anonymous: a unique display name plus a bearer token, no credentials.
// Accounts expire a TTL after registration.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
	userTTL  time.Duration
}

// NewService creates a new account service with dependencies from AppContext.
func NewService(appCtx *app.AppContext, cfg *config.Config) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
		userTTL:  cfg.Users.TTL,
	}
}

// RegisterRequest carries the profile supplied at registration. The
// image is a URL; upload/storage happens upstream of this service.
type RegisterRequest struct {
	Name       string `json:"name"`
	Image      string `json:"image"`
	Gender     string `json:"gender"`
	Preference string `json:"preference"`
}

// AuthResponse is the profile plus bearer token returned by register and
// login.
type AuthResponse struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Token string `json:"token"`
}

// Register creates a new account and issues its first token.
//
// Behavior:
//   - InvalidArgument for an empty/short name, missing image, or a
//     gender/preference outside the enums.
//   - Conflict if the display name is taken.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case len(name) < 2 || len(name) > 50:
		return nil, svcErr.InvalidArgument("name must be between 2 and 50 characters")
	case strings.TrimSpace(req.Image) == "":
		return nil, svcErr.InvalidArgument("profile image is required")
	case !db.ValidGender(req.Gender):
		return nil, svcErr.InvalidArgument(`gender must be "boy" or "girl"`)
	case !db.ValidPreference(req.Preference):
		return nil, svcErr.InvalidArgument(`preference must be "boy", "girl" or "both"`)
	}

	user := &db.User{
		Name:       name,
		Image:      strings.TrimSpace(req.Image),
		Gender:     req.Gender,
		Preference: req.Preference,
		ExpiresAt:  time.Now().UTC().Add(s.userTTL),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.appCtx.Tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("user registered", "id", user.ID, "name", user.Name)
	return &AuthResponse{ID: user.ID, Name: user.Name, Image: user.Image, Token: token}, nil
}

// LoginRequest identifies the returning user by display name.
type LoginRequest struct {
	Name string `json:"name"`
}

// Login issues a fresh token for an existing account. NotFound if the
// name is unknown (or the account expired).
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, svcErr.InvalidArgument("name is required")
	}

	user, err := s.userRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	token, err := s.appCtx.Tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{ID: user.ID, Name: user.Name, Image: user.Image, Token: token}, nil
}

// Profile is the caller's own account view. Swipe relation sets are
// never included.
type Profile struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	Gender     string    `json:"gender"`
	Preference string    `json:"preference"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Me returns the authenticated user's own profile.
func (s *Service) Me(ctx context.Context, userID uint64) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:         user.ID,
		Name:       user.Name,
		Image:      user.Image,
		Gender:     user.Gender,
		Preference: user.Preference,
		CreatedAt:  user.CreatedAt,
		ExpiresAt:  user.ExpiresAt,
	}, nil
}
