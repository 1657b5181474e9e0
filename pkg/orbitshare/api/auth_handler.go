package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"

	"github.com/orbitshare/orbitshare/pkg/orbitshare"
)

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	College  string `json:"college"`
	Branch   string `json:"branch"`
	Semester string `json:"semester"`
}

// LoginRequest is the request body for opening a session.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the request body for editing profile fields.
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	College  string `json:"college"`
	Branch   string `json:"branch"`
	Semester string `json:"semester"`
}

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := h.service.Register(r.Context(), orbitshare.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		College:  req.College,
		Branch:   req.Branch,
		Semester: req.Semester,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	writeMessage(w, r, http.StatusCreated, "user created successfully")
}

// Login verifies credentials and returns a session token plus the user.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.service.Login(r.Context(), orbitshare.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.JSON(w, r, session)
}

// GetProfile returns the caller's account.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "access denied: no token provided")
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]*orbitshare.User{"user": user})
}

// UpdateProfile edits the caller's profile fields.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "access denied: no token provided")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), orbitshare.UpdateProfileRequest{
		UserID:   userID,
		Name:     req.Name,
		College:  req.College,
		Branch:   req.Branch,
		Semester: req.Semester,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"message": "profile updated successfully",
		"user":    user,
	})
}
