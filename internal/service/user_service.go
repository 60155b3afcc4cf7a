package service

import (
	"context"
	"fmt"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/media"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	media      media.Uploader
}

type ChangePasswordInput struct {
	UserID      uint
	OldPassword string
	NewPassword string
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	uploader media.Uploader,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		media:      uploader,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}

	if !CheckPassword(user.Password, in.OldPassword) {
		return models.NewValidationError("old password is incorrect")
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, in.UserID, hash)
}

// SetBio writes the user's bio. Used for both the initial add and later
// updates; the two endpoints only differ in their success message.
func (s *UserService) SetBio(ctx context.Context, userID uint, bio string) (*models.User, error) {
	bio = strings.TrimSpace(bio)
	if bio == "" {
		return nil, models.NewValidationError("bio is required")
	}
	const maxBioLen = 500
	if len(bio) > maxBioLen {
		return nil, models.NewValidationError("bio too long (max 500 characters)")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Bio = bio
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfileImage uploads the new image to the external host, stores the
// returned URL and asks the host to drop the previous image.
func (s *UserService) UpdateProfileImage(ctx context.Context, userID uint, localPath string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, localPath)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	previous := user.ProfileImage
	user.ProfileImage = url
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if previous != "" {
		s.media.Remove(ctx, previous)
	}
	return user, nil
}

// Follow adds a follow edge from follower to the named user. Following a
// user twice is a no-op, following yourself is rejected.
func (s *UserService) Follow(ctx context.Context, followerID uint, username string) (*models.User, error) {
	target, err := s.lookupTarget(ctx, followerID, username, "follow")
	if err != nil {
		return nil, err
	}
	if err := s.followRepo.Follow(ctx, followerID, target.ID); err != nil {
		return nil, err
	}
	s.invalidateFollowProfiles(ctx, followerID, target.Username)
	return target, nil
}

// Unfollow removes the follow edge. Unfollowing a user you do not follow
// is a no-op.
func (s *UserService) Unfollow(ctx context.Context, followerID uint, username string) (*models.User, error) {
	target, err := s.lookupTarget(ctx, followerID, username, "unfollow")
	if err != nil {
		return nil, err
	}
	if err := s.followRepo.Unfollow(ctx, followerID, target.ID); err != nil {
		return nil, err
	}
	s.invalidateFollowProfiles(ctx, followerID, target.Username)
	return target, nil
}

func (s *UserService) lookupTarget(ctx context.Context, followerID uint, username, action string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("User")
	}
	if target.ID == followerID {
		return nil, models.NewValidationError(fmt.Sprintf("you cannot %s yourself", action))
	}
	return target, nil
}

// invalidateFollowProfiles drops both cached profile summaries after a
// follow edge changed: the target's followersCount and the follower's
// followingCount are stale.
func (s *UserService) invalidateFollowProfiles(ctx context.Context, followerID uint, targetUsername string) {
	cache.InvalidateProfile(ctx, targetUsername)
	if follower, err := s.userRepo.GetByID(ctx, followerID); err == nil {
		cache.InvalidateProfile(ctx, follower.Username)
	}
}
