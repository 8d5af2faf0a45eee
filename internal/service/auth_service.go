package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/asingh/agri-rental-website/internal/config"
	"github.com/asingh/agri-rental-website/internal/domain"
	"github.com/asingh/agri-rental-website/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Indian mobile numbers: exactly 10 digits, first digit 6-9.
var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

const (
	minNameLen     = 2
	minPasswordLen = 6
)

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	cfg         *config.Config
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
	}
}

type SignupInput struct {
	Name     string
	Phone    string
	Password string
}

type LoginInput struct {
	Phone     string
	Password  string
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	User  *domain.User
	Token string
}

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func ValidPassword(password string) bool {
	return len(password) >= minPasswordLen
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)

	if len(name) < minNameLen {
		return nil, domain.ErrInvalidName
	}
	if !ValidPhone(phone) {
		return nil, domain.ErrInvalidPhone
	}
	if !ValidPassword(input.Password) {
		return nil, domain.ErrInvalidPassword
	}

	existing, err := s.userRepo.GetByPhone(ctx, phone)
	if err == nil && existing != nil {
		return nil, domain.ErrDuplicatePhone
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check phone: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Phone:        phone,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two concurrent signups can both pass the pre-check; the unique
		// index on phone decides the race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicatePhone
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	phone := strings.TrimSpace(input.Phone)
	if !ValidPhone(phone) {
		return nil, domain.ErrInvalidPhone
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same error as a password mismatch, so callers cannot probe
			// which phone numbers are registered.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	session := &domain.UserSession{
		UserID:       user.ID,
		SessionToken: token,
		ExpiresAt:    time.Now().Add(s.cfg.SessionTTL),
		IPAddress:    input.IPAddress,
		UserAgent:    input.UserAgent,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now

	return &LoginResult{User: user, Token: token}, nil
}

// ValidateSession resolves a token to its user. Unknown token, expired
// session and deactivated account all come back as ErrNotAuthenticated;
// no distinction is surfaced. An expired row found here is deleted.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if !session.ExpiresAt.After(time.Now()) {
		_ = s.sessionRepo.Delete(ctx, session.ID)
		return nil, domain.ErrNotAuthenticated
	}

	if !session.User.IsActive {
		return nil, domain.ErrNotAuthenticated
	}

	user := session.User
	return &user, nil
}

// Logout is idempotent: an unknown or already-deleted token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessionRepo.DeleteByToken(ctx, token)
}

// CleanupExpiredSessions removes session rows past their expiry. Validation
// already treats them as absent; this just keeps the table from growing.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, time.Now())
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
