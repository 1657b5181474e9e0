package orbitshare

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// UploadReward is the fixed number of credits awarded for every successful
// upload, with no cap and no content deduplication.
const UploadReward = 10

// MaxUploadSize is the upload ceiling in bytes.
const MaxUploadSize = 10 << 20 // 10 MiB

// Service defines the main interface for the orbitshare core: account
// management, the resource lifecycle and reviews. Every operation takes
// the caller's identity (where one is needed) as an explicit parameter.
type Service interface {
	// Account operations
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error)

	// Resource lifecycle operations
	UploadResource(ctx context.Context, req UploadResourceRequest) (*UploadReceipt, error)
	ListResources(ctx context.Context) ([]*RatedResource, error)
	ListUserResources(ctx context.Context, uploaderID uuid.UUID) ([]*Resource, error)
	DownloadResource(ctx context.Context, resourceID uuid.UUID) (*Resource, io.ReadCloser, error)
	DeleteResource(ctx context.Context, resourceID, callerID uuid.UUID) error

	// Review operations
	CreateReview(ctx context.Context, req CreateReviewRequest) (*Review, error)
	ListReviews(ctx context.Context, resourceID uuid.UUID) ([]*ResourceReview, error)
}

// TokenIssuer mints an identity claim for a user. Verification happens at
// the transport edge; the core only issues tokens on login.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}
