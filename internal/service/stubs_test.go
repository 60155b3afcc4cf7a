package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ripple/internal/models"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn            func(context.Context, uint) (*models.User, error)
	getByEmailFn         func(context.Context, string) (*models.User, error)
	getByUsernameFn      func(context.Context, string) (*models.User, error)
	createFn             func(context.Context, *models.User) error
	updateFn             func(context.Context, *models.User) error
	updateRefreshTokenFn func(context.Context, uint, string) error
	updatePasswordFn     func(context.Context, uint, string) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateRefreshToken(ctx context.Context, id uint, token string) error {
	return s.updateRefreshTokenFn(ctx, id, token)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:            func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:         func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn:      func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:             func(_ context.Context, _ *models.User) error { return nil },
		updateFn:             func(_ context.Context, _ *models.User) error { return nil },
		updateRefreshTokenFn: func(_ context.Context, _ uint, _ string) error { return nil },
		updatePasswordFn:     func(_ context.Context, _ uint, _ string) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	listFeedFn     func(context.Context) ([]*models.Post, error)
	listByOwnerFn  func(context.Context, uint) ([]*models.Post, error)
	countByOwnerFn func(context.Context, uint) (int64, error)
	updateFn       func(context.Context, *models.Post) error
	deleteFn       func(context.Context, uint) error
	isLikedFn      func(context.Context, uint, uint) (bool, error)
	likeFn         func(context.Context, uint, uint) error
	unlikeFn       func(context.Context, uint, uint) error
	likersFn       func(context.Context, uint) ([]models.User, error)
	likerIDsFn     func(context.Context, uint) ([]uint, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListFeed(ctx context.Context) ([]*models.Post, error) {
	return s.listFeedFn(ctx)
}
func (s *postRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Post, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *postRepoStub) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	return s.countByOwnerFn(ctx, ownerID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) Likers(ctx context.Context, postID uint) ([]models.User, error) {
	return s.likersFn(ctx, postID)
}
func (s *postRepoStub) LikerIDs(ctx context.Context, postID uint) ([]uint, error) {
	return s.likerIDsFn(ctx, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:       func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFeedFn:     func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		listByOwnerFn:  func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		countByOwnerFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		updateFn:       func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		isLikedFn:      func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:         func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:       func(_ context.Context, _, _ uint) error { return nil },
		likersFn:       func(_ context.Context, _ uint) ([]models.User, error) { return nil, nil },
		likerIDsFn:     func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn         func(context.Context, uint, uint) error
	unfollowFn       func(context.Context, uint, uint) error
	isFollowingFn    func(context.Context, uint, uint) (bool, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followeeID uint) error {
	return s.followFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return s.unfollowFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:         func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:       func(_ context.Context, _, _ uint) error { return nil },
		isFollowingFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// uploaderStub is a stub for media.Uploader.
type uploaderStub struct {
	uploadFn func(context.Context, string) (string, error)
	removed  []string
}

func (s *uploaderStub) Upload(ctx context.Context, localPath string) (string, error) {
	if s.uploadFn != nil {
		return s.uploadFn(ctx, localPath)
	}
	return "https://media.example/" + localPath, nil
}
func (s *uploaderStub) Remove(_ context.Context, url string) {
	s.removed = append(s.removed, url)
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T", err)
	require.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "UNAUTHORIZED")
}
