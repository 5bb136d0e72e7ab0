package service

import (
	"errors"
	"fmt"
	"strings"

	"dayliz/config"
	"dayliz/internal/auth"
	"dayliz/internal/domain"
	"dayliz/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	cfg   *config.JWTConfig
	users UserStore
}

func NewAuthService(cfg *config.JWTConfig, users UserStore) *AuthService {
	return &AuthService{cfg: cfg, users: users}
}

type AuthResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

func (s *AuthService) Register(email, password, phone string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}
	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrValidation)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: email, PasswordHash: string(hash), Phone: phone}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResult, error) {
	access, err := auth.GenerateAccessToken(s.cfg, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(s.cfg, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
