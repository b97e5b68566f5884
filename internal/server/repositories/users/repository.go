package users

import (
	"context"

	"github.com/dmitrijs2005/linguabridge/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDAndEmail(ctx context.Context, id, email string) (*models.User, error)
}
