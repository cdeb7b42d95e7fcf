package service

import (
	"errors"

	"merit/internal/auth"
	"merit/internal/domain"
	"merit/internal/models"
	"merit/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
)

type AuthService struct {
	tokens   *auth.Tokens
	userRepo *repository.UserRepository
}

func NewAuthService(tokens *auth.Tokens, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{tokens: tokens, userRepo: userRepo}
}

func (s *AuthService) Register(email, username, password string) (*models.User, string, string, error) {
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	access, err := s.tokens.IssueAccess(u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, err := s.tokens.IssueAccess(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, "", "", err
	}
	return u, access, refresh, nil
}

// Refresh redeems a refresh token for a fresh access token. The account is
// re-read so a deleted user cannot keep minting access tokens.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", auth.ErrInvalidToken
		}
		return "", err
	}
	return s.tokens.IssueAccess(u.ID, u.Email, u.Role)
}
