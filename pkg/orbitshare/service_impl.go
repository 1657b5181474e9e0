package orbitshare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/orbitshare/orbitshare/pkg/orbitshare/blobkey"
)

const bcryptCost = 12

// Document allow-list. An upload must pass both checks: declared MIME type
// and file extension.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".ppt":  true,
	".pptx": true,
}

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	issuer     TokenIssuer
	keys       blobkey.Generator
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithTokenIssuer sets the issuer used to mint session tokens on login
func WithTokenIssuer(issuer TokenIssuer) Option {
	return func(s *service) {
		s.issuer = issuer
	}
}

// WithKeyGenerator overrides the blob key generation strategy
func WithKeyGenerator(g blobkey.Generator) Option {
	return func(s *service) {
		s.keys = g
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		keys:   blobkey.NewShardedGenerator(),
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

// Account operations

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, invalidf("name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, invalidf("email is required")
	}
	if req.Password == "" {
		return nil, invalidf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		College:      req.College,
		Branch:       req.Branch,
		Semester:     req.Semester,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if s.issuer == nil {
		return nil, fmt.Errorf("token issuer is not configured")
	}

	user, err := s.repository.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repository.GetUser(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	user, err := s.repository.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	user.College = req.College
	user.Branch = req.Branch
	user.Semester = req.Semester
	user.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Resource lifecycle operations

func (s *service) UploadResource(ctx context.Context, req UploadResourceRequest) (*UploadReceipt, error) {
	if err := validateUpload(req); err != nil {
		return nil, err
	}

	resourceID := uuid.New()
	key := s.keys.Key(resourceID, req.FileName)

	// Blob first: an orphaned blob is inert, a catalog row with no blob is
	// not. Failure here aborts before any catalog mutation.
	if err := s.blobStore.Upload(ctx, key, req.Content); err != nil {
		return nil, &StorageError{Op: "upload", Key: key, Err: err}
	}

	resource := &Resource{
		ID:          resourceID,
		Title:       req.Title,
		Description: req.Description,
		BlobKey:     key,
		MimeType:    req.MimeType,
		FileName:    req.FileName,
		FileSize:    req.Size,
		UploaderID:  req.UploaderID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repository.CreateResource(ctx, resource); err != nil {
		// The blob stays behind without a catalog entry pointing at it; a
		// background reconciliation sweep can reclaim it.
		s.logger.Error("catalog insert failed after blob write",
			"resource_id", resourceID, "blob_key", key, "error", err)
		return nil, err
	}

	receipt := &UploadReceipt{
		Resource:      resource,
		CreditsEarned: UploadReward,
		RewardPosted:  true,
	}

	// The resource is already visible; a failed award must not undo that.
	if err := s.repository.AddCredits(ctx, req.UploaderID, UploadReward); err != nil {
		s.logger.Error("credit award failed after upload",
			"uploader_id", req.UploaderID, "resource_id", resourceID, "error", err)
		receipt.RewardPosted = false
		return receipt, nil
	}

	uploader, err := s.repository.GetUser(ctx, req.UploaderID)
	if err != nil {
		s.logger.Error("credit read-back failed after award",
			"uploader_id", req.UploaderID, "error", err)
		receipt.RewardPosted = false
		return receipt, nil
	}
	receipt.CreditBalance = uploader.Credits

	return receipt, nil
}

func validateUpload(req UploadResourceRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return invalidf("title is required")
	}
	if req.Content == nil || req.FileName == "" {
		return invalidf("no file uploaded")
	}
	if req.Size <= 0 {
		return invalidf("no file uploaded")
	}
	if req.Size > MaxUploadSize {
		return invalidf("file exceeds the %d byte limit", MaxUploadSize)
	}
	if !allowedMimeTypes[strings.ToLower(req.MimeType)] {
		return invalidf("file type %q is not allowed", req.MimeType)
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(req.FileName))] {
		return invalidf("file extension %q is not allowed", filepath.Ext(req.FileName))
	}
	return nil
}

func (s *service) ListResources(ctx context.Context) ([]*RatedResource, error) {
	return s.repository.ListResources(ctx)
}

func (s *service) ListUserResources(ctx context.Context, uploaderID uuid.UUID) ([]*Resource, error) {
	return s.repository.ListResourcesByUploader(ctx, uploaderID)
}

func (s *service) DownloadResource(ctx context.Context, resourceID uuid.UUID) (*Resource, io.ReadCloser, error) {
	resource, err := s.repository.GetResource(ctx, resourceID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobStore.Download(ctx, resource.BlobKey)
	if err != nil {
		return nil, nil, &StorageError{Op: "download", Key: resource.BlobKey, Err: err}
	}

	return resource, rc, nil
}

func (s *service) DeleteResource(ctx context.Context, resourceID, callerID uuid.UUID) error {
	resource, err := s.repository.DeleteResourceOwnedBy(ctx, resourceID, callerID)
	if err != nil {
		return err
	}

	// The catalog row is gone; a failed purge leaves only an inert blob,
	// which we log and tolerate rather than failing the delete.
	if err := s.blobStore.Delete(ctx, resource.BlobKey); err != nil {
		s.logger.Error("blob purge failed after catalog delete",
			"resource_id", resourceID, "blob_key", resource.BlobKey, "error", err)
	}

	return nil
}

// Review operations

func (s *service) CreateReview(ctx context.Context, req CreateReviewRequest) (*Review, error) {
	if req.ResourceID == uuid.Nil {
		return nil, invalidf("resource id is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, invalidf("rating must be between 1 and 5")
	}

	review := &Review{
		ID:         uuid.New(),
		ResourceID: req.ResourceID,
		AuthorID:   req.AuthorID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repository.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *service) ListReviews(ctx context.Context, resourceID uuid.UUID) ([]*ResourceReview, error) {
	return s.repository.ListReviewsForResource(ctx, resourceID)
}
