package server

import (
	"github.com/gofiber/fiber/v2"

	"ripple/internal/models"
	"ripple/internal/service"
)

// TogglePostLike handles POST /api/likes/post/:postId/toggle-like.
// Likes the post when no like exists yet, removes the like otherwise.
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.Context(), service.ToggleLikeInput{
		UserID: s.currentUserID(c),
		PostID: postID,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	message := "you unliked the post"
	if result.Liked {
		message = "you liked the post"
	}
	return models.Respond(c, fiber.StatusCreated, result.Post, message)
}

// GetPostLikers handles GET /api/likes/post/:postId
func (s *Server) GetPostLikers(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	likers, err := s.feedService.PostLikers(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return models.Respond(c, fiber.StatusOK, likers, "liked users fetched successfully")
}
