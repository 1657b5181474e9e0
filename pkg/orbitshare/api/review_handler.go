package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/orbitshare/orbitshare/pkg/orbitshare"
)

// CreateReviewRequest is the request body for submitting a review.
type CreateReviewRequest struct {
	ResourceID string `json:"resourceId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// CreateReview submits a review for a resource.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "access denied: no token provided")
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ResourceID == "" {
		writeMessage(w, r, http.StatusBadRequest, "resource id and rating are required")
		return
	}
	resourceID, err := uuid.Parse(req.ResourceID)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid resource id")
		return
	}

	review, err := h.service.CreateReview(r.Context(), orbitshare.CreateReviewRequest{
		AuthorID:   userID,
		ResourceID: resourceID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"message": "review submitted successfully",
		"review":  review,
	})
}

// ListReviews returns a resource's reviews, newest first. Public.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	resourceID, err := uuid.Parse(chi.URLParam(r, "resourceID"))
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid resource id")
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), resourceID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []*orbitshare.ResourceReview{}
	}

	render.JSON(w, r, reviews)
}
