package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"social-api/internal/auth"
	"social-api/internal/domain"
	"social-api/internal/repository"
)

// UserStore is the subset of the user repository the user service needs.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenCodec issues bearer tokens for a subject and resolves them back.
type TokenCodec interface {
	Issue(subject string) (string, error)
	Validate(token string) (string, error)
}

// UserService describes user lifecycle and authentication operations.
type UserService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
}

type userService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenCodec
	log    logrus.FieldLogger

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(users UserStore, hasher PasswordHasher, tokens TokenCodec, log logrus.FieldLogger) UserService {
	return &userService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

func (s *userService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	log := s.log.WithField("email", email)
	log.Debug("registering user")

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("user registered")
	return sanitizeUser(user), nil
}

// Authenticate checks an email and password pair. An unknown email and a wrong
// password produce the same error.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := s.log.WithField("email", email)
	log.Debug("authenticating user")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// burn the same bcrypt work as a real comparison
			s.hasher.Verify(password, s.fallbackHash())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	s.log.WithField("email", user.Email).Debug("creating access token")
	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResolveToken maps a bearer token to its user. Only expiry is reported
// distinctly; every other failure is ErrInvalidCredentials.
func (s *userService) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	email, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		s.log.WithError(err).Debug("rejecting token")
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.log.WithError(err).Warn("prepare fallback hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
