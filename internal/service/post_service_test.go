package service

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/cache"
	"ripple/internal/models"
)

// likeSetPostRepo backs the like operations with an in-memory set so
// toggle sequences behave like the real unique-row table.
type likeSetPostRepo struct {
	*postRepoStub
	likes map[[2]uint]bool
}

func newLikeSetPostRepo() *likeSetPostRepo {
	repo := &likeSetPostRepo{
		postRepoStub: noopPostRepo(),
		likes:        map[[2]uint]bool{},
	}
	repo.isLikedFn = func(_ context.Context, userID, postID uint) (bool, error) {
		return repo.likes[[2]uint{userID, postID}], nil
	}
	repo.likeFn = func(_ context.Context, userID, postID uint) error {
		repo.likes[[2]uint{userID, postID}] = true
		return nil
	}
	repo.unlikeFn = func(_ context.Context, userID, postID uint) error {
		delete(repo.likes, [2]uint{userID, postID})
		return nil
	}
	return repo
}

func TestPostService_ToggleLike(t *testing.T) {
	t.Parallel()

	repo := newLikeSetPostRepo()
	svc := NewPostService(repo, &uploaderStub{})
	ctx := context.Background()
	in := ToggleLikeInput{UserID: 1, PostID: 5}

	first, err := svc.ToggleLike(ctx, in)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.True(t, repo.likes[[2]uint{1, 5}])

	second, err := svc.ToggleLike(ctx, in)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.False(t, repo.likes[[2]uint{1, 5}])
}

// Toggling twice restores the original liker set.
func TestPostService_ToggleLike_DoubleToggleRestoresState(t *testing.T) {
	t.Parallel()

	repo := newLikeSetPostRepo()
	repo.likes[[2]uint{2, 5}] = true
	svc := NewPostService(repo, &uploaderStub{})
	ctx := context.Background()

	before := len(repo.likes)
	for i := 0; i < 2; i++ {
		_, err := svc.ToggleLike(ctx, ToggleLikeInput{UserID: 2, PostID: 5})
		require.NoError(t, err)
	}
	assert.Len(t, repo.likes, before)
	assert.True(t, repo.likes[[2]uint{2, 5}])
}

func TestPostService_ToggleLike_MissingPost(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post")
	}
	svc := NewPostService(repo, &uploaderStub{})
	_, err := svc.ToggleLike(context.Background(), ToggleLikeInput{UserID: 1, PostID: 99})
	assertNotFoundError(t, err)
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	t.Run("content required", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo(), &uploaderStub{})
		_, err := svc.CreatePost(context.Background(), CreatePostInput{OwnerID: 1, Content: "  "})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo(), &uploaderStub{})
		_, err := svc.CreatePost(context.Background(), CreatePostInput{
			OwnerID: 1,
			Content: strings.Repeat("x", 10001),
		})
		assertValidationError(t, err)
	})

	t.Run("image upload feeds the stored URL", func(t *testing.T) {
		t.Parallel()
		var created *models.Post
		repo := noopPostRepo()
		repo.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 3
			created = p
			return nil
		}
		uploader := &uploaderStub{
			uploadFn: func(_ context.Context, _ string) (string, error) {
				return "https://media.example/abc.jpg", nil
			},
		}
		svc := NewPostService(repo, uploader)
		_, err := svc.CreatePost(context.Background(), CreatePostInput{
			OwnerID:   1,
			Content:   "hello",
			ImagePath: "/tmp/upload-abc",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://media.example/abc.jpg", created.Image)
	})
}

func TestPostService_UpdatePost_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, OwnerID: 10, Content: "original"}, nil
	}
	svc := NewPostService(repo, &uploaderStub{})

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 99, PostID: 1, Content: "hijack"})
	assertForbiddenError(t, err)

	_, err = svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 10, PostID: 1, Content: "edited"})
	require.NoError(t, err)
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	t.Run("ownership enforced", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, OwnerID: 10}, nil
		}
		svc := NewPostService(repo, &uploaderStub{})
		err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 99, PostID: 1})
		assertForbiddenError(t, err)
	})

	t.Run("hosted image removed after delete", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, OwnerID: 10, Image: "https://media.example/old.jpg"}, nil
		}
		uploader := &uploaderStub{}
		svc := NewPostService(repo, uploader)
		err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 10, PostID: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://media.example/old.jpg"}, uploader.removed)
	})
}

// swaps the global cache client, so not parallel
func TestPostService_WriteInvalidatesOwnerProfile(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	ctx := context.Background()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, OwnerID: 10, Owner: &models.User{ID: 10, Username: "alice"}}, nil
	}
	svc := NewPostService(repo, &uploaderStub{})

	seed := func() {
		require.NoError(t, cache.SetJSON(ctx, cache.ProfileKey("alice"), models.ProfileSummary{ID: 10}, cache.ProfileTTL))
	}

	seed()
	_, err := svc.CreatePost(ctx, CreatePostInput{OwnerID: 10, Content: "hello"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ProfileKey("alice")))

	seed()
	require.NoError(t, svc.DeletePost(ctx, DeletePostInput{UserID: 10, PostID: 1}))
	assert.False(t, mr.Exists(cache.ProfileKey("alice")))
}
