package orbitshare

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore defines the interface for storage backends holding uploaded
// files. Implementations exist for memory, filesystem and S3-compatible
// object stores.
type BlobStore interface {
	// Upload stores the content read from reader under objectKey.
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download returns the content stored under objectKey.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the content stored under objectKey.
	Delete(ctx context.Context, objectKey string) error

	// Meta retrieves metadata for a stored blob.
	Meta(ctx context.Context, objectKey string) (*BlobMeta, error)
}

// Repository defines the interface for user, resource and review
// persistence. Rating aggregates are never stored: list operations compute
// them from the current review set on every call.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error

	// AddCredits atomically adds amount to the user's balance. The
	// increment must happen at the storage layer, not as a read-modify-write
	// in application code, so concurrent awards to the same user never lose
	// updates.
	AddCredits(ctx context.Context, userID uuid.UUID, amount int64) error

	// Resource operations
	CreateResource(ctx context.Context, resource *Resource) error
	GetResource(ctx context.Context, id uuid.UUID) (*Resource, error)
	ListResources(ctx context.Context) ([]*RatedResource, error)
	ListResourcesByUploader(ctx context.Context, uploaderID uuid.UUID) ([]*Resource, error)

	// DeleteResourceOwnedBy removes the resource only when it exists and is
	// owned by ownerID, returning the removed record so the caller can purge
	// the backing blob. Both the missing and the not-owned case fail with
	// ErrResourceNotFound.
	DeleteResourceOwnedBy(ctx context.Context, id, ownerID uuid.UUID) (*Resource, error)

	// Review operations
	CreateReview(ctx context.Context, review *Review) error
	ListReviewsForResource(ctx context.Context, resourceID uuid.UUID) ([]*ResourceReview, error)
}
