package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/orbitshare/orbitshare/pkg/orbitshare"
)

// Repository implements orbitshare.Repository using in-memory storage
type Repository struct {
	mu                sync.RWMutex
	users             map[uuid.UUID]*orbitshare.User
	usersByEmail      map[string]uuid.UUID
	resources         map[uuid.UUID]*orbitshare.Resource
	reviews           map[uuid.UUID]*orbitshare.Review
	reviewsByResource map[uuid.UUID][]uuid.UUID // resource_id -> []review_id
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		users:             make(map[uuid.UUID]*orbitshare.User),
		usersByEmail:      make(map[string]uuid.UUID),
		resources:         make(map[uuid.UUID]*orbitshare.Resource),
		reviews:           make(map[uuid.UUID]*orbitshare.Review),
		reviewsByResource: make(map[uuid.UUID][]uuid.UUID),
	}
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *orbitshare.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[user.Email]; exists {
		return orbitshare.ErrEmailTaken
	}

	// Store a copy to avoid external modifications
	userCopy := *user
	r.users[user.ID] = &userCopy
	r.usersByEmail[user.Email] = user.ID

	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*orbitshare.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, orbitshare.ErrUserNotFound
	}

	userCopy := *user
	return &userCopy, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*orbitshare.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByEmail[email]
	if !exists {
		return nil, orbitshare.ErrUserNotFound
	}

	userCopy := *r.users[id]
	return &userCopy, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *orbitshare.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.users[user.ID]
	if !exists {
		return orbitshare.ErrUserNotFound
	}

	// Credits are owned by the ledger; carry the stored balance so a stale
	// profile write can never clobber a concurrent award.
	userCopy := *user
	userCopy.Credits = stored.Credits
	r.users[user.ID] = &userCopy

	return nil
}

func (r *Repository) AddCredits(ctx context.Context, userID uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		return orbitshare.ErrUserNotFound
	}

	// The whole increment happens inside one critical section, the memory
	// equivalent of a storage-layer atomic update.
	user.Credits += amount

	return nil
}

// Resource operations

func (r *Repository) CreateResource(ctx context.Context, resource *orbitshare.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[resource.UploaderID]; !exists {
		return orbitshare.ErrUserNotFound
	}

	resourceCopy := *resource
	r.resources[resource.ID] = &resourceCopy

	return nil
}

func (r *Repository) GetResource(ctx context.Context, id uuid.UUID) (*orbitshare.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resource, exists := r.resources[id]
	if !exists {
		return nil, orbitshare.ErrResourceNotFound
	}

	resourceCopy := *resource
	return &resourceCopy, nil
}

func (r *Repository) ListResources(ctx context.Context) ([]*orbitshare.RatedResource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*orbitshare.RatedResource, 0, len(r.resources))
	for _, resource := range r.resources {
		var sum int64
		var count int
		for _, reviewID := range r.reviewsByResource[resource.ID] {
			sum += int64(r.reviews[reviewID].Rating)
			count++
		}

		var uploaderName string
		if uploader, exists := r.users[resource.UploaderID]; exists {
			uploaderName = uploader.Name
		}

		result = append(result, &orbitshare.RatedResource{
			Resource:      *resource,
			UploaderName:  uploaderName,
			AverageRating: orbitshare.AverageRating(sum, count),
			ReviewCount:   count,
		})
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) ListResourcesByUploader(ctx context.Context, uploaderID uuid.UUID) ([]*orbitshare.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*orbitshare.Resource
	for _, resource := range r.resources {
		if resource.UploaderID == uploaderID {
			resourceCopy := *resource
			result = append(result, &resourceCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) DeleteResourceOwnedBy(ctx context.Context, id, ownerID uuid.UUID) (*orbitshare.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resource, exists := r.resources[id]
	if !exists || resource.UploaderID != ownerID {
		// Missing and not-owned are indistinguishable on purpose.
		return nil, orbitshare.ErrResourceNotFound
	}

	delete(r.resources, id)
	for _, reviewID := range r.reviewsByResource[id] {
		delete(r.reviews, reviewID)
	}
	delete(r.reviewsByResource, id)

	resourceCopy := *resource
	return &resourceCopy, nil
}

// Review operations

func (r *Repository) CreateReview(ctx context.Context, review *orbitshare.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resources[review.ResourceID]; !exists {
		return orbitshare.ErrResourceNotFound
	}
	if _, exists := r.users[review.AuthorID]; !exists {
		return orbitshare.ErrUserNotFound
	}

	reviewCopy := *review
	r.reviews[review.ID] = &reviewCopy
	r.reviewsByResource[review.ResourceID] = append(r.reviewsByResource[review.ResourceID], review.ID)

	return nil
}

func (r *Repository) ListReviewsForResource(ctx context.Context, resourceID uuid.UUID) ([]*orbitshare.ResourceReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviewIDs := r.reviewsByResource[resourceID]
	result := make([]*orbitshare.ResourceReview, 0, len(reviewIDs))
	for _, reviewID := range reviewIDs {
		review := r.reviews[reviewID]

		var authorName string
		if author, exists := r.users[review.AuthorID]; exists {
			authorName = author.Name
		}

		result = append(result, &orbitshare.ResourceReview{
			Review:     *review,
			AuthorName: authorName,
		})
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}
