package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orbitshare/orbitshare/pkg/orbitshare"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements orbitshare.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "email") {
				return orbitshare.ErrEmailTaken
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			if strings.Contains(pgErr.ConstraintName, "resource") {
				return orbitshare.ErrResourceNotFound
			}
			return orbitshare.ErrUserNotFound
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *orbitshare.User) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, college, branch, semester,
			credits, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.College, user.Branch, user.Semester,
		user.Credits, user.CreatedAt, user.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create user", err)
	}

	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*orbitshare.User, error) {
	query := `
		SELECT id, name, email, password_hash, college, branch, semester,
		       credits, created_at, updated_at
		FROM users WHERE id = $1`

	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*orbitshare.User, error) {
	query := `
		SELECT id, name, email, password_hash, college, branch, semester,
		       credits, created_at, updated_at
		FROM users WHERE email = $1`

	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *Repository) scanUser(row pgx.Row) (*orbitshare.User, error) {
	var user orbitshare.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.College, &user.Branch, &user.Semester,
		&user.Credits, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orbitshare.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *orbitshare.User) error {
	// Credits are deliberately absent: the balance only moves through
	// AddCredits.
	query := `
		UPDATE users SET
			name = $2, college = $3, branch = $4, semester = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.College, user.Branch, user.Semester, user.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return orbitshare.ErrUserNotFound
	}

	return nil
}

func (r *Repository) AddCredits(ctx context.Context, userID uuid.UUID, amount int64) error {
	// Single atomic increment: concurrent awards to the same user serialize
	// on the row, so no update is ever lost.
	query := `UPDATE users SET credits = credits + $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, userID, amount)
	if err != nil {
		return r.handlePostgresError("add credits", err)
	}
	if tag.RowsAffected() == 0 {
		return orbitshare.ErrUserNotFound
	}

	return nil
}

// Resource operations

func (r *Repository) CreateResource(ctx context.Context, resource *orbitshare.Resource) error {
	query := `
		INSERT INTO resources (
			id, title, description, blob_key, mime_type, file_name,
			file_size, uploader_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		resource.ID, resource.Title, resource.Description, resource.BlobKey,
		resource.MimeType, resource.FileName, resource.FileSize,
		resource.UploaderID, resource.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create resource", err)
	}

	return nil
}

func (r *Repository) GetResource(ctx context.Context, id uuid.UUID) (*orbitshare.Resource, error) {
	query := `
		SELECT id, title, description, blob_key, mime_type, file_name,
		       file_size, uploader_id, created_at
		FROM resources WHERE id = $1`

	var resource orbitshare.Resource
	err := r.db.QueryRow(ctx, query, id).Scan(
		&resource.ID, &resource.Title, &resource.Description, &resource.BlobKey,
		&resource.MimeType, &resource.FileName, &resource.FileSize,
		&resource.UploaderID, &resource.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orbitshare.ErrResourceNotFound
		}
		return nil, err
	}

	return &resource, nil
}

func (r *Repository) ListResources(ctx context.Context) ([]*orbitshare.RatedResource, error) {
	// The aggregate is recomputed from the review set on every read; the
	// rounding itself stays in Go so all backends share one rule.
	query := `
		SELECT r.id, r.title, r.description, r.blob_key, r.mime_type,
		       r.file_name, r.file_size, r.uploader_id, r.created_at,
		       u.name, COALESCE(SUM(v.rating), 0), COUNT(v.id)
		FROM resources r
		JOIN users u ON u.id = r.uploader_id
		LEFT JOIN reviews v ON v.resource_id = r.id
		GROUP BY r.id, u.name
		ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list resources", err)
	}
	defer rows.Close()

	var result []*orbitshare.RatedResource
	for rows.Next() {
		var rated orbitshare.RatedResource
		var ratingSum int64
		var reviewCount int
		err := rows.Scan(
			&rated.ID, &rated.Title, &rated.Description, &rated.BlobKey,
			&rated.MimeType, &rated.FileName, &rated.FileSize,
			&rated.UploaderID, &rated.CreatedAt,
			&rated.UploaderName, &ratingSum, &reviewCount)
		if err != nil {
			return nil, err
		}
		rated.AverageRating = orbitshare.AverageRating(ratingSum, reviewCount)
		rated.ReviewCount = reviewCount
		result = append(result, &rated)
	}

	return result, rows.Err()
}

func (r *Repository) ListResourcesByUploader(ctx context.Context, uploaderID uuid.UUID) ([]*orbitshare.Resource, error) {
	query := `
		SELECT id, title, description, blob_key, mime_type, file_name,
		       file_size, uploader_id, created_at
		FROM resources WHERE uploader_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, uploaderID)
	if err != nil {
		return nil, r.handlePostgresError("list resources by uploader", err)
	}
	defer rows.Close()

	var result []*orbitshare.Resource
	for rows.Next() {
		var resource orbitshare.Resource
		err := rows.Scan(
			&resource.ID, &resource.Title, &resource.Description, &resource.BlobKey,
			&resource.MimeType, &resource.FileName, &resource.FileSize,
			&resource.UploaderID, &resource.CreatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, &resource)
	}

	return result, rows.Err()
}

func (r *Repository) DeleteResourceOwnedBy(ctx context.Context, id, ownerID uuid.UUID) (*orbitshare.Resource, error) {
	// Ownership and existence collapse into the same no-rows outcome.
	// Reviews go with the resource via ON DELETE CASCADE.
	query := `
		DELETE FROM resources WHERE id = $1 AND uploader_id = $2
		RETURNING id, title, description, blob_key, mime_type, file_name,
		          file_size, uploader_id, created_at`

	var resource orbitshare.Resource
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&resource.ID, &resource.Title, &resource.Description, &resource.BlobKey,
		&resource.MimeType, &resource.FileName, &resource.FileSize,
		&resource.UploaderID, &resource.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orbitshare.ErrResourceNotFound
		}
		return nil, r.handlePostgresError("delete resource", err)
	}

	return &resource, nil
}

// Review operations

func (r *Repository) CreateReview(ctx context.Context, review *orbitshare.Review) error {
	query := `
		INSERT INTO reviews (
			id, resource_id, author_id, rating, comment, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		review.ID, review.ResourceID, review.AuthorID,
		review.Rating, review.Comment, review.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create review", err)
	}

	return nil
}

func (r *Repository) ListReviewsForResource(ctx context.Context, resourceID uuid.UUID) ([]*orbitshare.ResourceReview, error) {
	query := `
		SELECT v.id, v.resource_id, v.author_id, v.rating, v.comment,
		       v.created_at, u.name
		FROM reviews v
		JOIN users u ON u.id = v.author_id
		WHERE v.resource_id = $1
		ORDER BY v.created_at DESC`

	rows, err := r.db.Query(ctx, query, resourceID)
	if err != nil {
		return nil, r.handlePostgresError("list reviews", err)
	}
	defer rows.Close()

	var result []*orbitshare.ResourceReview
	for rows.Next() {
		var review orbitshare.ResourceReview
		err := rows.Scan(
			&review.ID, &review.ResourceID, &review.AuthorID,
			&review.Rating, &review.Comment, &review.CreatedAt,
			&review.AuthorName)
		if err != nil {
			return nil, err
		}
		result = append(result, &review)
	}

	return result, rows.Err()
}
