package services

import (
	"context"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"mindaudit/internal/models"
	"mindaudit/internal/repositories"
	"mindaudit/utils"
)

const (
	tokenTTL   = 120 * time.Minute
	sessionTTL = 24 * 30 * 2 * time.Hour
)

// UserService handles registration and authentication. Collaborator sign-ups
// also create the collaborator row in pending_approval.
type UserService struct {
	UserRepo         *repositories.UserRepository
	CollaboratorRepo *repositories.CollaboratorRepository
	TokenManager     *utils.Manager
	SigningKey       string
}

type SignUpInput struct {
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`

	// CommissionRateBP applies to collaborator sign-ups, basis points.
	CommissionRateBP int64 `json:"commission_rate_bp"`
}

func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return models.User{}, models.ErrInvalidCredentials
	}
	switch input.Role {
	case models.RoleCollaborator, models.RoleCompany:
	default:
		return models.User{}, models.ErrForbidden
	}

	exists, err := s.UserRepo.EmailExists(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, models.ErrDuplicateEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.UserRepo.Create(ctx, models.User{
		Role:     input.Role,
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Phone:    strings.TrimSpace(input.Phone),
		Password: string(hashed),
	})
	if err != nil {
		return models.User{}, err
	}

	if user.Role == models.RoleCollaborator {
		if _, err := s.CollaboratorRepo.Create(ctx, user.ID, input.CommissionRateBP); err != nil {
			return models.User{}, err
		}
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) SignIn(ctx context.Context, email, password string) (models.Tokens, error) {
	user, err := s.UserRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == models.ErrUserNotFound {
			return models.Tokens{}, models.ErrInvalidCredentials
		}
		return models.Tokens{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	accessToken, err := s.issueAccessToken(ctx, user)
	if err != nil {
		return models.Tokens{}, err
	}
	return s.createSession(ctx, user, accessToken)
}

func (s *UserService) issueAccessToken(ctx context.Context, user models.User) (string, error) {
	claims := &models.Claims{
		UserID: uint(user.ID),
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	if user.Role == models.RoleCollaborator {
		collab, err := s.CollaboratorRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			return "", err
		}
		claims.CollaboratorID = collab.ID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.SigningKey))
}

func (s *UserService) createSession(ctx context.Context, user models.User, accessToken string) (models.Tokens, error) {
	tokens := models.Tokens{AccessToken: accessToken}

	var err error
	tokens.RefreshToken = uuid.New().String()
	if s.TokenManager != nil {
		tokens.RefreshToken, err = s.TokenManager.NewRefreshToken()
		if err != nil {
			return models.Tokens{}, err
		}
	}

	err = s.UserRepo.CreateSession(ctx, models.Session{
		UserID:       user.ID,
		Role:         user.Role,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    time.Now().Add(sessionTTL),
	})
	if err != nil {
		return models.Tokens{}, err
	}
	return tokens, nil
}

// Refresh rotates a refresh token into a new token pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, err
	}
	if session.RefreshToken == "" || session.ExpiresAt.Before(time.Now()) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	user, err := s.UserRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return models.Tokens{}, err
	}
	accessToken, err := s.issueAccessToken(ctx, user)
	if err != nil {
		return models.Tokens{}, err
	}
	return s.createSession(ctx, user, accessToken)
}

func (s *UserService) Logout(ctx context.Context, userID int) error {
	return s.UserRepo.DeleteSessions(ctx, userID)
}

func (s *UserService) GetByID(ctx context.Context, id int) (models.User, error) {
	user, err := s.UserRepo.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}
