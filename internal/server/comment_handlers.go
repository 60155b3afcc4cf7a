package server

import (
	"github.com/gofiber/fiber/v2"

	"ripple/internal/models"
	"ripple/internal/service"
)

// CreateComment handles POST /api/comment/create-comment/:postId
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req struct {
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:  s.currentUserID(c),
		PostID:  postID,
		Content: req.Comment,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return models.Respond(c, fiber.StatusCreated, comment, "comment created successfully")
}

// GetPostComments handles GET /api/comment/get-comment-post/:postId
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return models.Respond(c, fiber.StatusOK, comments, "comments fetched successfully")
}

// DeleteComment handles DELETE /api/comment/delete-comment/post/:postId/comment/:commentId.
// Allowed for the post owner and the comment author.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	_, err = s.commentService.DeleteComment(c.Context(), service.DeleteCommentInput{
		UserID:    s.currentUserID(c),
		PostID:    postID,
		CommentID: commentID,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return models.Respond(c, fiber.StatusOK, nil, "comment deleted successfully")
}
