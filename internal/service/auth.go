package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/fashion_store/internal/models"
	"github.com/Skotchmaster/fashion_store/internal/repo"
	"github.com/Skotchmaster/fashion_store/pkg/events"
	pkg_hash "github.com/Skotchmaster/fashion_store/pkg/hash"
	"github.com/Skotchmaster/fashion_store/pkg/logging"
	"github.com/Skotchmaster/fashion_store/pkg/tokens"
)

// bcrypt ignores everything past this length, so longer passwords are refused.
const maxPasswordBytes = 72

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	SetAdmin(ctx context.Context, id uint, isAdmin bool) error
}

type AuthService struct {
	Repo      UserStore
	Events    events.Publisher
	JWTSecret []byte
	AccessTTL time.Duration
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	IsAdmin     bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, email, password string) (uint, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return 0, fmt.Errorf("email and password are required: %w", ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return 0, fmt.Errorf("password must be at most %d bytes: %w", maxPasswordBytes, ErrValidation)
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Email: email, PasswordHash: pwHash}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return 0, fmt.Errorf("email already exists: %w", ErrConflict)
		}
		return 0, err
	}

	l.Info("user_signed_up", "user_id", user.ID)
	publish(ctx, s.Events, events.TopicUser, user.ID, map[string]any{
		"type":   "user_signed_up",
		"userID": user.ID,
		"email":  user.Email,
	})
	return user.ID, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	role := tokens.RoleUser
	if user.IsAdmin {
		role = tokens.RoleAdmin
	}
	token, exp, err := tokens.Issue(user.ID, role, s.AccessTTL, s.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{AccessToken: token, AccessExp: exp, IsAdmin: user.IsAdmin}, nil
}

func (s *AuthService) Authenticate(_ context.Context, token string) (uint, error) {
	claims, err := tokens.AccessClaimsFromToken(token, s.JWTSecret)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return id, nil
}

func (s *AuthService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return false, err
	}
	return user.IsAdmin, nil
}

// EnsureAdmin creates an admin account, or promotes the existing user with
// that email. The password of an existing user is left unchanged.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (id uint, created bool, err error) {
	email = normalizeEmail(email)
	if email == "" {
		return 0, false, fmt.Errorf("email is required: %w", ErrValidation)
	}

	existing, err := s.Repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if err := s.Repo.SetAdmin(ctx, existing.ID, true); err != nil {
				return 0, false, err
			}
		}
		return existing.ID, false, nil
	case !errors.Is(err, repo.ErrNotFound):
		return 0, false, err
	}

	if password == "" {
		return 0, false, fmt.Errorf("password is required: %w", ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return 0, false, fmt.Errorf("password must be at most %d bytes: %w", maxPasswordBytes, ErrValidation)
	}
	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		return 0, false, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Email: email, PasswordHash: pwHash, IsAdmin: true}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return 0, false, err
	}
	return user.ID, true, nil
}
