package orbitshare

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered member of the platform. Credits is a non-negative
// counter owned by the reputation ledger; it is only ever changed through
// Repository.AddCredits.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	College      string    `json:"college,omitempty"`
	Branch       string    `json:"branch,omitempty"`
	Semester     string    `json:"semester,omitempty"`
	Credits      int64     `json:"credits"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Resource is a shared document in the catalog. It is immutable after
// upload except for owner-initiated deletion. BlobKey addresses the backing
// file in the configured blob store.
type Resource struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	BlobKey     string    `json:"blob_key"`
	MimeType    string    `json:"mime_type"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	UploaderID  uuid.UUID `json:"uploader_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Review is a rating with an optional comment. Reviews are immutable; a
// user may review the same resource more than once.
type Review struct {
	ID         uuid.UUID `json:"id"`
	ResourceID uuid.UUID `json:"resource_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RatedResource is a catalog entry annotated with its uploader's display
// name and the rating aggregate computed from the current review set.
type RatedResource struct {
	Resource
	UploaderName  string  `json:"uploader_name"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// ResourceReview is a review joined with its author's display name.
type ResourceReview struct {
	Review
	AuthorName string `json:"author_name"`
}

// UploadReceipt is returned by a completed upload. CreditBalance is read
// back from the ledger after the award, so it reflects the authoritative
// value rather than an assumed one. When the award or the read-back fails
// the upload still succeeds and RewardPosted is false.
type UploadReceipt struct {
	Resource      *Resource `json:"resource"`
	CreditsEarned int64     `json:"credits_earned"`
	CreditBalance int64     `json:"credit_balance"`
	RewardPosted  bool      `json:"reward_posted"`
}

// Session is the result of a successful login.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// BlobMeta describes a stored blob.
type BlobMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
}
