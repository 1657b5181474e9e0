package orbitshare_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitshare/orbitshare/pkg/orbitshare"
	memoryrepo "github.com/orbitshare/orbitshare/pkg/orbitshare/repo/memory"
	memorystorage "github.com/orbitshare/orbitshare/pkg/orbitshare/storage/memory"
)

type staticIssuer struct{}

func (staticIssuer) Issue(userID uuid.UUID) (string, error) {
	return "token-" + userID.String(), nil
}

func newTestService(t *testing.T) (orbitshare.Service, *memoryrepo.Repository, *memorystorage.Backend) {
	t.Helper()

	repo := memoryrepo.New()
	store := memorystorage.New()

	svc, err := orbitshare.New(
		orbitshare.WithRepository(repo),
		orbitshare.WithBlobStore(store),
		orbitshare.WithTokenIssuer(staticIssuer{}),
	)
	require.NoError(t, err)

	return svc, repo, store
}

func registerUser(t *testing.T, svc orbitshare.Service, email string) *orbitshare.User {
	t.Helper()

	user, err := svc.Register(context.Background(), orbitshare.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "hunter22",
		College:  "Orbit College",
		Branch:   "CSE",
		Semester: "5",
	})
	require.NoError(t, err)

	return user
}

func uploadPDF(t *testing.T, svc orbitshare.Service, uploaderID uuid.UUID, title string) *orbitshare.UploadReceipt {
	t.Helper()

	content := []byte("%PDF-1.4 test document body")
	receipt, err := svc.UploadResource(context.Background(), orbitshare.UploadResourceRequest{
		UploaderID: uploaderID,
		Title:      title,
		FileName:   "notes.pdf",
		MimeType:   "application/pdf",
		Size:       int64(len(content)),
		Content:    bytes.NewReader(content),
	})
	require.NoError(t, err)

	return receipt
}

func TestServiceNew(t *testing.T) {
	t.Run("requires repository", func(t *testing.T) {
		_, err := orbitshare.New(orbitshare.WithBlobStore(memorystorage.New()))
		assert.Error(t, err)
	})

	t.Run("requires blob store", func(t *testing.T) {
		_, err := orbitshare.New(orbitshare.WithRepository(memoryrepo.New()))
		assert.Error(t, err)
	})
}

func TestRegister(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		user := registerUser(t, svc, "alice@campus.edu")
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice@campus.edu", user.Email)
		assert.NotEqual(t, "hunter22", user.PasswordHash)
		assert.Equal(t, int64(0), user.Credits)
	})

	t.Run("normalizes email", func(t *testing.T) {
		user, err := svc.Register(ctx, orbitshare.RegisterRequest{
			Name:     "Bob",
			Email:    "  Bob@Campus.EDU ",
			Password: "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "bob@campus.edu", user.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, orbitshare.RegisterRequest{
			Name:     "Alice Again",
			Email:    "alice@campus.edu",
			Password: "secret",
		})
		assert.ErrorIs(t, err, orbitshare.ErrEmailTaken)
	})

	t.Run("missing fields", func(t *testing.T) {
		tests := []struct {
			name string
			req  orbitshare.RegisterRequest
		}{
			{"no name", orbitshare.RegisterRequest{Email: "x@y.z", Password: "p"}},
			{"no email", orbitshare.RegisterRequest{Name: "X", Password: "p"}},
			{"no password", orbitshare.RegisterRequest{Name: "X", Email: "x@y.z"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Register(ctx, tt.req)
				assert.ErrorIs(t, err, orbitshare.ErrValidation)
			})
		}
	})
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user := registerUser(t, svc, "carol@campus.edu")

	t.Run("success", func(t *testing.T) {
		session, err := svc.Login(ctx, orbitshare.LoginRequest{
			Email:    "carol@campus.edu",
			Password: "hunter22",
		})
		require.NoError(t, err)
		assert.Equal(t, "token-"+user.ID.String(), session.Token)
		assert.Equal(t, user.ID, session.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, orbitshare.LoginRequest{
			Email:    "carol@campus.edu",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, orbitshare.ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, orbitshare.LoginRequest{
			Email:    "nobody@campus.edu",
			Password: "hunter22",
		})
		assert.ErrorIs(t, err, orbitshare.ErrInvalidCredentials)
	})
}

func TestUpdateProfile(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	user := registerUser(t, svc, "dave@campus.edu")
	uploadPDF(t, svc, user.ID, "Algorithms Notes")

	updated, err := svc.UpdateProfile(ctx, orbitshare.UpdateProfileRequest{
		UserID:   user.ID,
		Name:     "Dave Renamed",
		College:  "New College",
		Branch:   "ECE",
		Semester: "6",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dave Renamed", updated.Name)

	// The profile write must not clobber the upload reward.
	stored, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(orbitshare.UploadReward), stored.Credits)
}

func TestUploadResource(t *testing.T) {
	ctx := context.Background()

	t.Run("awards credits and stores blob", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		user := registerUser(t, svc, "erin@campus.edu")

		receipt := uploadPDF(t, svc, user.ID, "DBMS Unit 3")

		assert.Equal(t, int64(orbitshare.UploadReward), receipt.CreditsEarned)
		assert.Equal(t, int64(orbitshare.UploadReward), receipt.CreditBalance)
		assert.True(t, receipt.RewardPosted)
		assert.Equal(t, "DBMS Unit 3", receipt.Resource.Title)

		stored, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(orbitshare.UploadReward), stored.Credits)

		// Round-trip the blob through the service.
		resource, rc, err := svc.DownloadResource(ctx, receipt.Resource.ID)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 test document body", string(data))
		assert.Equal(t, "notes.pdf", resource.FileName)
	})

	t.Run("every upload is rewarded", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		user := registerUser(t, svc, "frank@campus.edu")

		uploadPDF(t, svc, user.ID, "Upload One")
		uploadPDF(t, svc, user.ID, "Upload Two")
		uploadPDF(t, svc, user.ID, "Upload Three")

		stored, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3*orbitshare.UploadReward), stored.Credits)
	})

	t.Run("rejected upload has no side effects", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		user := registerUser(t, svc, "grace@campus.edu")

		_, err := svc.UploadResource(ctx, orbitshare.UploadResourceRequest{
			UploaderID: user.ID,
			Title:      "Malware",
			FileName:   "setup.exe",
			MimeType:   "application/octet-stream",
			Size:       128,
			Content:    strings.NewReader("MZ"),
		})
		assert.ErrorIs(t, err, orbitshare.ErrValidation)

		resources, err := repo.ListResources(ctx)
		require.NoError(t, err)
		assert.Empty(t, resources)

		stored, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stored.Credits)
	})

	t.Run("extension checked independently of mime type", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		user := registerUser(t, svc, "heidi@campus.edu")

		_, err := svc.UploadResource(ctx, orbitshare.UploadResourceRequest{
			UploaderID: user.ID,
			Title:      "Disguised",
			FileName:   "payload.exe",
			MimeType:   "application/pdf",
			Size:       128,
			Content:    strings.NewReader("MZ"),
		})
		assert.ErrorIs(t, err, orbitshare.ErrValidation)
	})

	t.Run("validation table", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		user := registerUser(t, svc, "ivan@campus.edu")

		tests := []struct {
			name string
			req  orbitshare.UploadResourceRequest
		}{
			{
				name: "missing title",
				req: orbitshare.UploadResourceRequest{
					UploaderID: user.ID, FileName: "a.pdf",
					MimeType: "application/pdf", Size: 10, Content: strings.NewReader("x"),
				},
			},
			{
				name: "missing file",
				req: orbitshare.UploadResourceRequest{
					UploaderID: user.ID, Title: "T",
					MimeType: "application/pdf", Size: 10,
				},
			},
			{
				name: "oversize",
				req: orbitshare.UploadResourceRequest{
					UploaderID: user.ID, Title: "T", FileName: "a.pdf",
					MimeType: "application/pdf", Size: orbitshare.MaxUploadSize + 1,
					Content: strings.NewReader("x"),
				},
			},
			{
				name: "disallowed mime type",
				req: orbitshare.UploadResourceRequest{
					UploaderID: user.ID, Title: "T", FileName: "a.pdf",
					MimeType: "image/png", Size: 10, Content: strings.NewReader("x"),
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.UploadResource(ctx, tt.req)
				assert.ErrorIs(t, err, orbitshare.ErrValidation)
			})
		}
	})

	t.Run("size at the ceiling is allowed", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		user := registerUser(t, svc, "judy@campus.edu")

		content := bytes.Repeat([]byte("a"), 2<<20)
		receipt, err := svc.UploadResource(ctx, orbitshare.UploadResourceRequest{
			UploaderID: user.ID,
			Title:      "Two Megabyte Deck",
			FileName:   "deck.pptx",
			MimeType:   "application/vnd.openxmlformats-officedocument.presentationml.presentation",
			Size:       int64(len(content)),
			Content:    bytes.NewReader(content),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(orbitshare.UploadReward), receipt.CreditsEarned)
	})
}

func TestDeleteResource(t *testing.T) {
	ctx := context.Background()

	t.Run("owner can delete and blob is purged", func(t *testing.T) {
		svc, _, store := newTestService(t)
		user := registerUser(t, svc, "kate@campus.edu")
		receipt := uploadPDF(t, svc, user.ID, "To Delete")

		require.NoError(t, svc.DeleteResource(ctx, receipt.Resource.ID, user.ID))

		_, _, err := svc.DownloadResource(ctx, receipt.Resource.ID)
		assert.ErrorIs(t, err, orbitshare.ErrResourceNotFound)

		_, err = store.Meta(ctx, receipt.Resource.BlobKey)
		assert.Error(t, err)
	})

	t.Run("non-owner and missing are indistinguishable", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		owner := registerUser(t, svc, "leo@campus.edu")
		other := registerUser(t, svc, "mallory@campus.edu")
		receipt := uploadPDF(t, svc, owner.ID, "Someone Else's")

		errNotOwned := svc.DeleteResource(ctx, receipt.Resource.ID, other.ID)
		errMissing := svc.DeleteResource(ctx, uuid.New(), other.ID)

		assert.ErrorIs(t, errNotOwned, orbitshare.ErrResourceNotFound)
		assert.ErrorIs(t, errMissing, orbitshare.ErrResourceNotFound)
		assert.Equal(t, errNotOwned.Error(), errMissing.Error())

		// The resource survives the failed attempt.
		_, _, err := svc.DownloadResource(ctx, receipt.Resource.ID)
		assert.NoError(t, err)
	})
}

func TestCreateReview(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user := registerUser(t, svc, "nina@campus.edu")
	receipt := uploadPDF(t, svc, user.ID, "Reviewed Notes")

	t.Run("rating bounds", func(t *testing.T) {
		tests := []struct {
			rating  int
			wantErr bool
		}{
			{rating: 0, wantErr: true},
			{rating: 1, wantErr: false},
			{rating: 5, wantErr: false},
			{rating: 6, wantErr: true},
			{rating: -1, wantErr: true},
		}

		for _, tt := range tests {
			_, err := svc.CreateReview(ctx, orbitshare.CreateReviewRequest{
				AuthorID:   user.ID,
				ResourceID: receipt.Resource.ID,
				Rating:     tt.rating,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, orbitshare.ErrValidation, "rating %d", tt.rating)
			} else {
				assert.NoError(t, err, "rating %d", tt.rating)
			}
		}
	})

	t.Run("missing resource", func(t *testing.T) {
		_, err := svc.CreateReview(ctx, orbitshare.CreateReviewRequest{
			AuthorID:   user.ID,
			ResourceID: uuid.New(),
			Rating:     4,
		})
		assert.ErrorIs(t, err, orbitshare.ErrResourceNotFound)
	})
}

func TestListResourcesAggregates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	uploader := registerUser(t, svc, "olga@campus.edu")
	reviewer := registerUser(t, svc, "pete@campus.edu")
	receipt := uploadPDF(t, svc, uploader.ID, "Rated Resource")

	for _, rating := range []int{5, 4, 3} {
		_, err := svc.CreateReview(ctx, orbitshare.CreateReviewRequest{
			AuthorID:   reviewer.ID,
			ResourceID: receipt.Resource.ID,
			Rating:     rating,
		})
		require.NoError(t, err)
	}

	resources, err := svc.ListResources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 1)

	assert.Equal(t, 3, resources[0].ReviewCount)
	assert.InDelta(t, 4.0, resources[0].AverageRating, 1e-9)
	assert.Equal(t, "Test User", resources[0].UploaderName)

	// Listing is a pure read; a second call sees the same aggregates.
	again, err := svc.ListResources(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.InDelta(t, resources[0].AverageRating, again[0].AverageRating, 1e-9)
}
