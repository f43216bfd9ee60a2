package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/studyhub/backend/internal/db"
	"github.com/studyhub/backend/internal/metrics"
	"github.com/studyhub/backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("conflict")
	ErrMisconfigured      = errors.New("auth config invalid")

	ErrPasswordTooLong = fmt.Errorf("%w: password longer than 72 bytes", ErrInvalidInput)
)

type AuthService struct {
	repo     *db.UserStore
	tokens   *TokenService
	metrics  *metrics.Metrics
	logger   logrus.FieldLogger
	hashCost int

	// Compared against when the email is unknown so both failure paths pay for a bcrypt comparison.
	dummyHash     []byte
	dummyHashOnce sync.Once
}

func NewAuthService(repo *db.UserStore, tokens *TokenService, m *metrics.Metrics, logger logrus.FieldLogger) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		metrics:  m,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register stores a new identity with a bcrypt hash of password.
// It returns ErrInvalidInput when a field is blank or the password exceeds
// bcrypt's 72-byte limit, and ErrConflict when the username or email is
// already registered.
func (s *AuthService) Register(ctx context.Context, username, email, password string) error {
	err := s.register(ctx, username, email, password)
	s.metrics.RecordAuthEvent("register", outcome(err))
	return err
}

func (s *AuthService) register(ctx context.Context, username, email, password string) error {
	if err := validateRegistration(username, email, password); err != nil {
		return err
	}

	// Skip the hashing cost for obvious duplicates; CreateUser re-checks under its lock.
	exists, err := s.repo.UserExists(ctx, username, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return ErrPasswordTooLong
		}
		return err
	}

	if _, err := s.repo.CreateUser(ctx, username, email, string(hash)); err != nil {
		if db.IsDuplicate(err) {
			return ErrConflict
		}
		return err
	}

	s.logger.WithField("username", username).Info("user registered")
	return nil
}

// Authenticate returns the identity registered under email when password matches.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			_ = bcrypt.CompareHashAndPassword(s.fallbackHash(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	res, err := s.login(ctx, email, password)
	s.metrics.RecordAuthEvent("login", outcome(err))
	return res, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Message:  "Login successful",
		Username: user.Username,
		Token:    token,
	}, nil
}

func (s *AuthService) fallbackHash() []byte {
	s.dummyHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.hashCost)
		if err != nil {
			s.logger.WithError(err).Warn("failed to prepare fallback hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Blank identifiers are rejected; a password only has to be non-empty.
func validateRegistration(username, email, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return ErrInvalidInput
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
