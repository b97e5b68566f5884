package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/linguabridge/internal/common"
	"github.com/dmitrijs2005/linguabridge/internal/server/auth"
	"github.com/dmitrijs2005/linguabridge/internal/server/config"
	"github.com/dmitrijs2005/linguabridge/internal/server/models"
	"github.com/dmitrijs2005/linguabridge/internal/server/repositories/repomanager"
)

// IdentityService turns a bearer token into the user it was issued to.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:          db,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
	}
}

// Resolve verifies token and loads its user with a single lookup on both id
// and email. A user that was deleted or whose email changed since the token
// was issued yields ErrIdentityMismatch.
func (s *IdentityService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}

	id, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).FindByIDAndEmail(ctx, id.UserID, id.Email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrIdentityMismatch
		case errors.Is(err, common.ErrInvalidClaimShape):
			return nil, err
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	return user, nil
}
