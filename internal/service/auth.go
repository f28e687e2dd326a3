package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bookstore/internal/forms"
	"github.com/Skotchmaster/bookstore/internal/models"
	"github.com/Skotchmaster/bookstore/internal/repo"
	"github.com/Skotchmaster/bookstore/pkg/events"
	"github.com/Skotchmaster/bookstore/pkg/logging"
	"github.com/Skotchmaster/bookstore/pkg/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	SessionSecret []byte
	SessionTTL    time.Duration
	Events        events.Publisher
}

type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, form forms.RegisterForm) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := forms.Validate(&form); err != nil {
		l.Info("register_rejected", "status", 200, "reason", "validation", "error", err)
		return nil, err
	}

	user := &models.User{Username: form.Username, Email: form.Email}
	if err := user.SetPassword(form.Password); err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Info("register_rejected", "status", 200, "reason", "email already registered")
			return nil, ErrDuplicateEmail
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	publish(ctx, s.Events, events.TopicUsers, idKey(user.ID), userEvent("user_registered", user))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, form forms.LoginForm) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if err := forms.Validate(&form); err != nil {
		return nil, err
	}

	user, err := s.Repo.GetUserByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 200, "reason", "invalid credentials")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_error", "status", 500, "error", err)
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.CheckPassword(form.Password) {
		l.Warn("login_failed", "status", 200, "reason", "invalid credentials", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, exp, err := tokens.IssueSession(user, s.SessionSecret, s.SessionTTL)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot issue session", "error", err)
		return nil, fmt.Errorf("issue session: %w", err)
	}

	l.Info("user_logged_in", "user_id", user.ID)
	publish(ctx, s.Events, events.TopicUsers, idKey(user.ID), userEvent("user_logged_in", user))
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// CurrentUser resolves a session token to its user. Absent, invalid, expired
// or orphaned tokens yield (nil, nil): the request is simply anonymous.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := tokens.SessionClaimsFromToken(token, s.SessionSecret)
	if err != nil {
		return nil, nil
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, nil
	}
	user, err := s.Repo.GetUserByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup session user: %w", err)
	}
	return user, nil
}
