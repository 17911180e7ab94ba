package crush

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/companycrush/crush-backend/internal/auth"
	svcErr "github.com/companycrush/crush-backend/internal/errors"
	"github.com/companycrush/crush-backend/internal/server"
)

// HTTP adapters: decode the request, call the service, map the error.

func (s *Service) handleFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		server.Error(w, svcErr.NotFound("user not found"))
		return
	}

	resp, err := s.SelectCandidates(r.Context(), userID, queryToken(r), queryLimit(r))
	if err != nil {
		server.Error(w, err)
		return
	}
	server.JSON(w, http.StatusOK, resp)
}

func (s *Service) handleSwipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		server.Error(w, svcErr.NotFound("user not found"))
		return
	}

	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	resp, err := s.Swipe(r.Context(), userID, &req)
	if err != nil {
		server.Error(w, err)
		return
	}
	server.JSON(w, http.StatusOK, resp)
}

func (s *Service) handleAdmirerCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		server.Error(w, svcErr.NotFound("user not found"))
		return
	}

	resp, err := s.CountAdmirers(r.Context(), userID)
	if err != nil {
		server.Error(w, err)
		return
	}
	server.JSON(w, http.StatusOK, resp)
}

func (s *Service) handleAdmirers(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		server.Error(w, svcErr.NotFound("user not found"))
		return
	}

	resp, err := s.ListAdmirers(r.Context(), userID, queryToken(r), queryLimit(r))
	if err != nil {
		server.Error(w, err)
		return
	}
	server.JSON(w, http.StatusOK, resp)
}

func queryToken(r *http.Request) *string {
	if t := r.URL.Query().Get("pagination_token"); t != "" {
		return &t
	}
	return nil
}

func queryLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return 0
}
