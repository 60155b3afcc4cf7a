package service

import (
	"context"

	"github.com/samber/lo"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/repository"
)

// FeedService composes read-side views: the home feed, a user's timeline,
// a post's likers and the profile summary.
type FeedService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// HomeFeed returns all posts, newest first, with owners, comments and
// engagement counts attached.
func (s *FeedService) HomeFeed(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.ListFeed(ctx)
}

// Timeline returns the named user's posts, newest first, each carrying the
// IDs of the users who liked it.
func (s *FeedService) Timeline(ctx context.Context, username string) ([]*models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User")
	}

	posts, err := s.postRepo.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	for _, post := range posts {
		likerIDs, err := s.postRepo.LikerIDs(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		post.LikerIDs = likerIDs
	}
	return posts, nil
}

// PostLikers returns the users who liked a post, reduced to their public
// summaries.
func (s *FeedService) PostLikers(ctx context.Context, postID uint) ([]models.UserSummary, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	likers, err := s.postRepo.Likers(ctx, postID)
	if err != nil {
		return nil, err
	}

	return lo.Map(likers, func(u models.User, _ int) models.UserSummary {
		return u.Summary()
	}), nil
}

// ProfileSummary builds the public profile view for a username. The
// viewer-independent part (identity and counts) is cached; isFollowing is
// resolved per viewer. viewerID of 0 means the request was anonymous.
func (s *FeedService) ProfileSummary(ctx context.Context, username string, viewerID uint) (*models.ProfileSummary, error) {
	var summary models.ProfileSummary
	key := cache.ProfileKey(username)

	err := cache.Aside(ctx, key, &summary, cache.ProfileTTL, func() error {
		user, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if user == nil {
			return models.NewNotFoundError("User")
		}

		postsCount, err := s.postRepo.CountByOwner(ctx, user.ID)
		if err != nil {
			return err
		}
		followers, err := s.followRepo.CountFollowers(ctx, user.ID)
		if err != nil {
			return err
		}
		following, err := s.followRepo.CountFollowing(ctx, user.ID)
		if err != nil {
			return err
		}

		summary = models.ProfileSummary{
			ID:             user.ID,
			Username:       user.Username,
			Bio:            user.Bio,
			ProfileImage:   user.ProfileImage,
			PostsCount:     postsCount,
			FollowersCount: followers,
			FollowingCount: following,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if viewerID != 0 && viewerID != summary.ID {
		isFollowing, err := s.followRepo.IsFollowing(ctx, viewerID, summary.ID)
		if err != nil {
			return nil, err
		}
		summary.IsFollowing = isFollowing
	}
	return &summary, nil
}
