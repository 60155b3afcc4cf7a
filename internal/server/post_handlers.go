package server

import (
	"github.com/gofiber/fiber/v2"

	"ripple/internal/models"
	"ripple/internal/service"
)

// CreatePost handles POST /api/post/create-post
// @Summary Create a post
// @Description Create a post with optional image upload
// @Tags post
// @Accept mpfd
// @Produce json
// @Param content formData string true "Post content"
// @Param image formData file false "Post image"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /post/create-post [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	content := c.FormValue("content")

	imagePath, err := s.saveUpload(c, "image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		OwnerID:   s.currentUserID(c),
		Content:   content,
		ImagePath: imagePath,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return models.Respond(c, fiber.StatusCreated, post, "post created successfully")
}

// GetAllPosts handles GET /api/post/get-all-post
func (s *Server) GetAllPosts(c *fiber.Ctx) error {
	posts, err := s.feedService.HomeFeed(c.Context())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return models.Respond(c, fiber.StatusOK, posts, "posts fetched successfully")
}

// GetUserPosts handles GET /api/post/get-post/:username
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("username is required"))
	}

	posts, err := s.feedService.Timeline(c.Context(), username)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return models.Respond(c, fiber.StatusOK, posts, "user posts fetched successfully")
}

// UpdatePost handles PATCH /api/post/update-post/:postId
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:  s.currentUserID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return models.Respond(c, fiber.StatusOK, post, "post updated successfully")
}

// DeletePost handles DELETE /api/post/delete-post/:postId
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	err = s.postService.DeletePost(c.Context(), service.DeletePostInput{
		UserID: s.currentUserID(c),
		PostID: postID,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return models.Respond(c, fiber.StatusOK, nil, "post deleted successfully")
}
