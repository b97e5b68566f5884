package translations

import (
	"context"

	"github.com/dmitrijs2005/linguabridge/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.TranslationSession) (*models.TranslationSession, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.TranslationSession, error)
}
