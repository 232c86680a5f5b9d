package handlers

import (
	"net/http"
	"strings"

	"github.com/ameyrk/wealthledger/internal/api/response"
	"github.com/ameyrk/wealthledger/internal/repository"
)

// UserHandler handles HTTP requests for user registration.
type UserHandler struct {
	userRepo *repository.UserRepository
}

// NewUserHandler creates a new UserHandler with the provided repository dependency.
func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// CreateUserRequest represents the request body for registering a user.
type CreateUserRequest struct {
	Username string `json:"username"`
}

// Create handles POST requests to register a new user. The returned ID is
// what clients present in the X-User-ID header on subsequent requests.
//
// Endpoint: POST /api/users
// Response: 201 Created with the new user
// Error: 400 Bad Request when the username is empty
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[CreateUserRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		response.RespondError(w, http.StatusBadRequest, "validation failed", "username is required")
		return
	}

	user, err := h.userRepo.CreateUser(username)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create user", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, user)
}
