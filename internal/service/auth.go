package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

const (
	welcomeSubject = "Welcome to Our Store!"
	welcomeBody    = "Thank you for registering!"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens TokenIssuer
	Mailer Mailer
	Events Publisher
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid credentials format", "error", err)
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if errors.Is(err, hash.ErrPasswordLength) {
		l.Warn("register_error", "status", 400, "reason", "password length", "error", err)
		return nil, fmt.Errorf("%w: password must be %d to %d characters", ErrValidation, hash.MinPasswordLen, hash.MaxPasswordLen)
	}
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if isInfraError(err) {
			l.Error("register_error", "status", 500, "reason", "store unavailable", "error", err)
			return nil, fmt.Errorf("create user: %w", err)
		}
		l.Warn("register_error", "status", 400, "reason", "store rejected user", "error", err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrValidation)
		}
		return nil, fmt.Errorf("%w: cannot register user", ErrValidation)
	}

	l.Info("register_success", "user_id", user.ID)

	if s.Mailer != nil {
		bestEffort(ctx, "welcome email", func(ctx context.Context) error {
			return s.Mailer.Send(ctx, user.Email, welcomeSubject, welcomeBody)
		})
	}
	publish(ctx, s.Events, TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), Event{
		Type:     "user_registered",
		EntityID: user.ID,
		Payload:  map[string]any{"email": user.Email, "role": user.Role},
	})

	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	if email == "" || password == "" {
		l.Warn("login_error", "status", 400, "reason", "missing credentials")
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "reason", "cannot load user", "error", err)
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	l.Info("login_success", "user_id", user.ID)
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) Profile(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return user, nil
}
