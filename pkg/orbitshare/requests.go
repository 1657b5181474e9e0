package orbitshare

import (
	"io"

	"github.com/google/uuid"
)

// RegisterRequest contains parameters for creating a user account.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	College  string
	Branch   string
	Semester string
}

// LoginRequest contains credentials for opening a session.
type LoginRequest struct {
	Email    string
	Password string
}

// UpdateProfileRequest contains the mutable profile fields. Empty Name is
// ignored; the other fields overwrite.
type UpdateProfileRequest struct {
	UserID   uuid.UUID
	Name     string
	College  string
	Branch   string
	Semester string
}

// UploadResourceRequest contains parameters for uploading a resource.
// UploaderID is the verified identity claim, passed explicitly rather than
// carried in ambient context.
type UploadResourceRequest struct {
	UploaderID  uuid.UUID
	Title       string
	Description string
	FileName    string
	MimeType    string
	Size        int64
	Content     io.Reader
}

// CreateReviewRequest contains parameters for submitting a review.
type CreateReviewRequest struct {
	AuthorID   uuid.UUID
	ResourceID uuid.UUID
	Rating     int
	Comment    string
}
