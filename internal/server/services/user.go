// Package services contains server-side business logic. This file implements
// UserService, which handles signup and login and issues access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/linguabridge/internal/common"
	"github.com/dmitrijs2005/linguabridge/internal/server/auth"
	"github.com/dmitrijs2005/linguabridge/internal/server/config"
	"github.com/dmitrijs2005/linguabridge/internal/server/models"
	"github.com/dmitrijs2005/linguabridge/internal/server/repositories/repomanager"
)

// PasswordHasher hashes and verifies passwords. auth.PasswordHasher is the
// production implementation.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// UserService provides the session operations:
// - Signup: create a user and mint a token
// - Login: verify credentials and mint a token
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	hasher                      PasswordHasher
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration

	// hash of a random secret, verified against on unknown-email logins
	dummyMu   sync.Mutex
	dummyHash string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		hasher:                      hasher,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Signup registers a new user and returns an access token for it. An email
// that is already taken yields ErrDuplicateRegistration, including when a
// concurrent signup wins the race to the unique index.
func (s *UserService) Signup(ctx context.Context, email, password, name string) (string, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return "", common.ErrDuplicateRegistration
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("error searching user: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return "", err
	}

	user, err := repo.Create(ctx, &models.User{Email: email, Name: name, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return "", common.ErrDuplicateRegistration
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	return s.generateAccessToken(user)
}

// Login verifies the password of the user registered under email and, on
// success, returns a new access token. Unknown email and wrong password both
// yield ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// spend the same bcrypt work as for a known user
			s.verifyDummy(ctx, password)
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", common.ErrInvalidCredentials
	}

	return s.generateAccessToken(user)
}

// --- helpers below ---

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	token, err := auth.GenerateToken(auth.Identity{UserID: user.ID, Email: user.Email}, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

// getDummyHash returns the cached dummy hash, building it on first use. A
// failed build is not cached, so the next call tries again.
func (s *UserService) getDummyHash(ctx context.Context) (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash != "" {
		return s.dummyHash, nil
	}

	secret, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}
	hash, err := s.hasher.Hash(ctx, secret)
	if err != nil {
		return "", err
	}
	s.dummyHash = hash
	return hash, nil
}

func (s *UserService) verifyDummy(ctx context.Context, password string) {
	hash, err := s.getDummyHash(ctx)
	if err != nil {
		return
	}
	_, _ = s.hasher.Verify(ctx, password, hash)
}
