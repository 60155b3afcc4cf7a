package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"ripple/internal/models"
	"ripple/internal/service"
	"ripple/internal/validation"
)

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new user account, optionally with a profile image
// @Tags auth
// @Accept mpfd
// @Produce json
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param profileImage formData file false "Profile image"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	username := c.FormValue("username")
	email := c.FormValue("email")
	password := c.FormValue("password")

	if username == "" || email == "" || password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("username, email, and password are required"))
	}
	if err := validation.ValidateUsername(username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), email)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if existing == nil {
		existing, err = s.userRepo.GetByUsername(c.Context(), username)
		if err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("user with this email or username already exists"))
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
	}

	if imagePath, err := s.saveUpload(c, "profileImage"); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	} else if imagePath != "" {
		url, upErr := s.mediaClient.Upload(c.Context(), imagePath)
		if upErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(upErr))
		}
		user.ProfileImage = url
	}

	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	pair, err := s.authService.IssueSessionPair(c.Context(), user, "signup")
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	s.setSessionCookies(c, pair.AccessToken, pair.RefreshToken)

	return models.Respond(c, fiber.StatusCreated, user, "user registered successfully")
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate a user and set session cookies
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("email and password are required"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if user == nil || !service.CheckPassword(user.Password, req.Password) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	pair, err := s.authService.IssueSessionPair(c.Context(), user, "login")
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	s.setSessionCookies(c, pair.AccessToken, pair.RefreshToken)

	return models.Respond(c, fiber.StatusOK, user, "user logged in successfully")
}

// Logout handles POST /api/auth/logout. The stored refresh token is
// dropped and the access token's jti is blacklisted for its remaining
// lifetime.
func (s *Server) Logout(c *fiber.Ctx) error {
	userID := s.currentUserID(c)

	if err := s.authService.ClearSession(c.Context(), userID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	if claims, ok := c.Locals("claims").(jwt.MapClaims); ok {
		s.blacklistAccessToken(c, claims)
	}
	s.clearSessionCookies(c)

	return models.Respond(c, fiber.StatusOK, nil, "user logged out successfully")
}

// RefreshToken handles POST /api/auth/refreshToken. A valid, current
// refresh token yields a fresh pair; a rotated or revoked one is rejected.
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refreshToken")
	if refreshToken == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.BodyParser(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("refresh token is required"))
	}

	pair, user, err := s.authService.RotateSession(c.Context(), refreshToken)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	s.setSessionCookies(c, pair.AccessToken, pair.RefreshToken)

	return models.Respond(c, fiber.StatusOK, user, "access token refreshed")
}

// GetCurrentUser handles GET /api/auth/getCurrentUser
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(*models.User)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	return models.Respond(c, fiber.StatusOK, user, "current user fetched successfully")
}

// ChangePassword handles POST /api/auth/changePassword
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("old and new password are required"))
	}

	err := s.userService.ChangePassword(c.Context(), service.ChangePasswordInput{
		UserID:      s.currentUserID(c),
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return models.Respond(c, fiber.StatusOK, nil, "password changed successfully")
}

// AddBio handles POST /api/auth/addBio
func (s *Server) AddBio(c *fiber.Ctx) error {
	return s.setBio(c, "bio added successfully")
}

// UpdateBio handles PATCH /api/auth/updateBio
func (s *Server) UpdateBio(c *fiber.Ctx) error {
	return s.setBio(c, "bio updated successfully")
}

func (s *Server) setBio(c *fiber.Ctx, message string) error {
	var req struct {
		Bio string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.SetBio(c.Context(), s.currentUserID(c), req.Bio)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return models.Respond(c, fiber.StatusOK, user, message)
}

// UpdateProfileImage handles PATCH /api/auth/update-profile-image
func (s *Server) UpdateProfileImage(c *fiber.Ctx) error {
	imagePath, err := s.saveUpload(c, "profileImage")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if imagePath == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("profileImage file is required"))
	}

	user, err := s.userService.UpdateProfileImage(c.Context(), s.currentUserID(c), imagePath)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return models.Respond(c, fiber.StatusOK, user, "profile image updated successfully")
}

// GetUserProfileData handles GET /api/auth/get-user-profile-data/:username.
// Works anonymously; a logged-in viewer additionally gets isFollowing.
func (s *Server) GetUserProfileData(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("username is required"))
	}

	viewerID, _ := s.optionalUserID(c)
	summary, err := s.feedService.ProfileSummary(c.Context(), username, viewerID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return models.Respond(c, fiber.StatusOK, summary, "user profile fetched successfully")
}

// FollowUser handles POST /api/auth/follow/:username
func (s *Server) FollowUser(c *fiber.Ctx) error {
	target, err := s.userService.Follow(c.Context(), s.currentUserID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return models.Respond(c, fiber.StatusOK, target.Summary(), "user followed successfully")
}

// UnfollowUser handles POST /api/auth/unfollow/:username
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	target, err := s.userService.Unfollow(c.Context(), s.currentUserID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return models.Respond(c, fiber.StatusOK, target.Summary(), "user unfollowed successfully")
}
