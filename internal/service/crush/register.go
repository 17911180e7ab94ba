package crush

import (
	"github.com/go-chi/chi/v5"

	"github.com/companycrush/crush-backend/internal/app"
	"github.com/companycrush/crush-backend/internal/auth"
)

// Registrar ties the crush service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the crush service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the crush routes to the router. All routes require
// an authenticated user.
func (reg *Registrar) Register(r chi.Router) {
	service := NewService(reg.appCtx)
	requireAuth := auth.RequireAuth(reg.appCtx.Tokens)

	r.Route("/api/crush", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/users", service.handleFeed)
		r.Post("/swipe", service.handleSwipe)
		r.Get("/admirers", service.handleAdmirers)
		r.Get("/admirers/count", service.handleAdmirerCount)
	})

	// legacy alias kept for existing clients
	r.With(requireAuth).Get("/api/users", service.handleFeed)
}
