// Package service contains the business logic between the HTTP handlers
// and the repositories.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ripple/internal/config"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

const (
	TokenIssuer   = "ripple-api"
	TokenAudience = "ripple-client"
)

// SessionPair is an access/refresh token pair issued together. The refresh
// token is also persisted on the user row so rotation can detect replays.
type SessionPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, cfg: cfg}
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueSessionPair signs a fresh access/refresh pair for the user and
// persists the refresh token, invalidating any previously issued one.
func (s *AuthService) IssueSessionPair(ctx context.Context, user *models.User, flow string) (*SessionPair, error) {
	access, err := s.signToken(user, s.cfg.JWTSecret, s.cfg.AccessTokenExpiry)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	refresh, err := s.signToken(user, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}

	observability.SessionsIssued.WithLabelValues(flow).Inc()
	return &SessionPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RotateSession validates a presented refresh token and, if it matches the
// one currently stored for the user, issues a new pair. A token that
// verifies but no longer matches the stored value has already been rotated
// (or revoked) and is rejected as a replay.
func (s *AuthService) RotateSession(ctx context.Context, refreshToken string) (*SessionPair, *models.User, error) {
	claims, err := s.parseToken(refreshToken, s.cfg.RefreshTokenSecret)
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("invalid refresh token")
	}

	userID, err := subjectID(claims)
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil, models.NewUnauthorizedError("invalid refresh token")
		}
		return nil, nil, err
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, nil, models.NewUnauthorizedError("refresh token is expired or used")
	}

	pair, err := s.IssueSessionPair(ctx, user, "refresh")
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// VerifyAccess parses an access token and loads the user it names.
func (s *AuthService) VerifyAccess(ctx context.Context, accessToken string) (*models.User, jwt.MapClaims, error) {
	claims, err := s.parseToken(accessToken, s.cfg.JWTSecret)
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("invalid access token")
	}

	userID, err := subjectID(claims)
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("invalid access token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil, models.NewUnauthorizedError("invalid access token")
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// ClearSession drops the stored refresh token so rotation can no longer
// succeed for this user.
func (s *AuthService) ClearSession(ctx context.Context, userID uint) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, "")
}

func (s *AuthService) signToken(user *models.User, secret string, expiry time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("token secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"email":    user.Email,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      now.Add(expiry).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *AuthService) parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (uint, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", sub)
	}
	return uint(id), nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
