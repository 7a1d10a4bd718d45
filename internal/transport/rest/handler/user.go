package handler

import (
	"encoding/json"
	"net/http"

	"formsapi/internal/model"
	"formsapi/internal/service"
	"formsapi/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// UserHandler handles user endpoints
type UserHandler struct {
	userSvc *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// SignUp handles POST /users
// @Summary Sign up
// @Tags users
// @Accept json
// @Produce json
// @Param body body model.SignUpRequest true "New user"
// @Success 201 {object} model.User
// @Failure 400 {object} ErrorResponse "Missing field"
// @Failure 409 {object} ErrorResponse "Username taken"
// @Router /users [post]
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req model.SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.userSvc.SignUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// List handles GET /users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.UserSummary
// @Failure 401 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// Me handles GET /users/me
// @Summary Signed-in user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.GetUser(r.Context()))
}

// Get handles GET /users/{id}
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.UserSummary
// @Failure 400 {object} ErrorResponse "Malformed id"
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Update handles PATCH /users. The presence of a username key is refused
// even when its value is null or unchanged.
// @Summary Update the signed-in user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.UserPatch true "Fields to change"
// @Success 200 {object} model.User
// @Failure 403 {object} ErrorResponse "Username is immutable"
// @Router /users [patch]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var keys map[string]json.RawMessage
	var patch model.UserPatch
	if err := json.Unmarshal(body, &keys); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_body")
		return
	}
	if err := json.Unmarshal(body, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_body")
		return
	}
	if _, present := keys["username"]; present && patch.Username == nil {
		patch.Username = new(string)
	}

	user, err := h.userSvc.Update(r.Context(), middleware.GetUser(r.Context()), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
