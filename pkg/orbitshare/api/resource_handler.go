package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/orbitshare/orbitshare/pkg/orbitshare"
)

// multipartSlack leaves room for the non-file form fields on top of the
// upload ceiling before the body is cut off.
const multipartSlack = 1 << 20

// UploadResource accepts a multipart form with title, description and a
// file payload, and runs the upload lifecycle.
func (h *Handler) UploadResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "access denied: no token provided")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, orbitshare.MaxUploadSize+multipartSlack)
	if err := r.ParseMultipartForm(orbitshare.MaxUploadSize); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "no file uploaded or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	receipt, err := h.service.UploadResource(r.Context(), orbitshare.UploadResourceRequest{
		UploaderID:  userID,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		FileName:    header.Filename,
		MimeType:    header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	message := fmt.Sprintf("resource uploaded successfully! %d credits awarded. your total: %d",
		receipt.CreditsEarned, receipt.CreditBalance)
	if !receipt.RewardPosted {
		message = "resource uploaded successfully"
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"message":        message,
		"resource":       receipt.Resource,
		"credits_earned": receipt.CreditsEarned,
		"credit_balance": receipt.CreditBalance,
	})
}

// ListResources returns the whole catalog with rating aggregates. Public.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.service.ListResources(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if resources == nil {
		resources = []*orbitshare.RatedResource{}
	}

	render.JSON(w, r, resources)
}

// ListUserResources returns the caller's own uploads.
func (h *Handler) ListUserResources(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "access denied: no token provided")
		return
	}

	resources, err := h.service.ListUserResources(r.Context(), userID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if resources == nil {
		resources = []*orbitshare.Resource{}
	}

	render.JSON(w, r, resources)
}

// DownloadResource streams a resource's file back to the client.
func (h *Handler) DownloadResource(w http.ResponseWriter, r *http.Request) {
	resourceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, r, http.StatusNotFound, orbitshare.ErrResourceNotFound.Error())
		return
	}

	resource, content, err := h.service.DownloadResource(r.Context(), resourceID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", resource.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resource.FileName))
	if _, err := io.Copy(w, content); err != nil {
		h.logger.Error("streaming download failed", "resource_id", resourceID, "error", err)
	}
}

// DeleteResource removes one of the caller's own resources.
func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "access denied: no token provided")
		return
	}

	resourceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// An unparseable id is as good as a nonexistent one.
		writeMessage(w, r, http.StatusNotFound, orbitshare.ErrResourceNotFound.Error())
		return
	}

	if err := h.service.DeleteResource(r.Context(), resourceID, userID); err != nil {
		h.renderError(w, r, err)
		return
	}

	writeMessage(w, r, http.StatusOK, "resource deleted successfully")
}
