package account

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/companycrush/crush-backend/internal/app"
	"github.com/companycrush/crush-backend/internal/auth"
	"github.com/companycrush/crush-backend/internal/config"
	svcErr "github.com/companycrush/crush-backend/internal/errors"
	"github.com/companycrush/crush-backend/internal/server"
)

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	resp, err := s.Register(r.Context(), &req)
	if err != nil {
		server.Error(w, err)
		return
	}
	server.JSON(w, http.StatusCreated, resp)
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	resp, err := s.Login(r.Context(), &req)
	if err != nil {
		server.Error(w, err)
		return
	}
	server.JSON(w, http.StatusOK, resp)
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		server.Error(w, svcErr.NotFound("user not found"))
		return
	}

	resp, err := s.Me(r.Context(), userID)
	if err != nil {
		server.Error(w, err)
		return
	}
	server.JSON(w, http.StatusOK, resp)
}

// Registrar ties the account service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
	cfg    *config.Config
}

// NewRegistrar creates a new Registrar for the account service.
func NewRegistrar(appCtx *app.AppContext, cfg *config.Config) *Registrar {
	return &Registrar{appCtx: appCtx, cfg: cfg}
}

// Register attaches the auth routes to the router. Registration and
// login are public; the profile read requires a token.
func (reg *Registrar) Register(r chi.Router) {
	service := NewService(reg.appCtx, reg.cfg)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", service.handleRegister)
		r.Post("/login", service.handleLogin)
		r.With(auth.RequireAuth(reg.appCtx.Tokens)).Get("/me", service.handleMe)
	})
}
