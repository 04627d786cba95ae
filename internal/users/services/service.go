package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stormbringer/internal/users/dto"
	"stormbringer/internal/users/models"
	"stormbringer/pkg/middleware"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
)

var (
	// ErrUserExists is returned when the username is taken
	ErrUserExists = errors.New("username already taken")
	// ErrInvalidCredentials is returned for a wrong username or password
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidInput wraps request validation failures
	ErrInvalidInput = errors.New("invalid user input")
	// ErrNotFound is returned when the user does not exist
	ErrNotFound = errors.New("user not found")
)

// RoleAssigner records role assignments for permission checks
type RoleAssigner interface {
	AssignRole(userID, role string) error
}

// Session is an issued login
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Service handles registration and login
type Service struct {
	repo   *Repository
	tokens *TokenService
	roles  RoleAssigner
	admins map[string]bool
	now    func() time.Time
}

// NewService creates a user service. Usernames in admins register as admins.
func NewService(repo *Repository, tokens *TokenService, roles RoleAssigner, admins []string) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		roles:  roles,
		admins: make(map[string]bool, len(admins)),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, name := range admins {
		s.admins[usernameKey(name)] = true
	}
	return s
}

// usernameKey folds case for lookups. A Caser must not be shared.
func usernameKey(username string) string {
	return cases.Fold().String(strings.TrimSpace(username))
}

// Register creates an account with the player role, plus admin for the
// configured usernames
func (s *Service) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := dto.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key := usernameKey(req.Username)
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		UsernameKey:  key,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		Roles:        []string{middleware.RolePlayer},
		CreatedAt:    s.now(),
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if s.admins[key] {
		user.Roles = append(user.Roles, middleware.RoleAdmin)
	}

	err = s.repo.RunTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByUsernameKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUserExists
		}
		return s.repo.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	for _, role := range user.Roles {
		if err := s.roles.AssignRole(user.ID, role); err != nil {
			slog.ErrorContext(ctx, "Failed to assign role", "user_id", user.ID, "role", role, "error", err)
			return nil, err
		}
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "username", user.Username, "roles", user.Roles)
	return user, nil
}

// Login checks credentials and issues a session token
func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (*Session, error) {
	if err := dto.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user, err := s.repo.FindByUsernameKey(ctx, usernameKey(req.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.TouchLogin(ctx, user.ID, now); err != nil {
		slog.WarnContext(ctx, "Login not recorded", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Me returns the profile of userID
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
