package service

import (
	"context"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/media"
	"ripple/internal/models"
	"ripple/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	media    media.Uploader
}

type CreatePostInput struct {
	OwnerID   uint
	Content   string
	ImagePath string // local temp file, empty when the post has no image
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

type ToggleLikeInput struct {
	UserID uint
	PostID uint
}

// ToggleLikeResult reports which way the toggle went so the handler can
// word its message.
type ToggleLikeResult struct {
	Liked bool
	Post  *models.Post
}

const maxPostLen = 10000

func NewPostService(postRepo repository.PostRepository, uploader media.Uploader) *PostService {
	return &PostService{postRepo: postRepo, media: uploader}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("content is required")
	}
	if len(content) > maxPostLen {
		return nil, models.NewValidationError("post too long (max 10000 characters)")
	}

	post := &models.Post{
		Content: content,
		OwnerID: in.OwnerID,
	}

	if in.ImagePath != "" {
		url, err := s.media.Upload(ctx, in.ImagePath)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		post.Image = url
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	// the owner's cached postsCount is stale now
	if created.Owner != nil {
		cache.InvalidateProfile(ctx, created.Owner.Username)
	}
	return created, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	likerIDs, err := s.postRepo.LikerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	post.LikerIDs = likerIDs
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != in.UserID {
		return nil, models.NewForbiddenError("you can only edit your own posts")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("content is required")
	}
	if len(content) > maxPostLen {
		return nil, models.NewValidationError("post too long (max 10000 characters)")
	}

	post.Content = content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.OwnerID != in.UserID {
		return models.NewForbiddenError("you can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}
	if post.Owner != nil {
		cache.InvalidateProfile(ctx, post.Owner.Username)
	}

	if post.Image != "" {
		s.media.Remove(ctx, post.Image)
	}
	return nil
}

// ToggleLike likes the post when no like from this user exists, and
// removes the like otherwise.
func (s *PostService) ToggleLike(ctx context.Context, in ToggleLikeInput) (*ToggleLikeResult, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}

	if liked {
		err = s.postRepo.Unlike(ctx, in.UserID, in.PostID)
	} else {
		err = s.postRepo.Like(ctx, in.UserID, in.PostID)
	}
	if err != nil {
		return nil, err
	}

	post, err := s.GetPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	return &ToggleLikeResult{Liked: !liked, Post: post}, nil
}
