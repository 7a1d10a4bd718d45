package handler

import (
	"net/http"

	"formsapi/internal/model"
	"formsapi/internal/service"
	"formsapi/internal/transport/rest/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// SignIn handles POST /users/signin. Basic credentials are checked by
// middleware; the response carries the user's reusable bearer token.
// @Summary Sign in
// @Tags users
// @Produce json
// @Security BasicAuth
// @Success 200 {object} model.SignInResponse
// @Failure 401 {object} ErrorResponse
// @Router /users/signin [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthenticated")
		return
	}

	token, err := h.authSvc.IssueOrReuseToken(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SignInResponse{User: user, Token: token})
}
