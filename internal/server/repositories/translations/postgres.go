package translations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/linguabridge/internal/dbx"
	"github.com/dmitrijs2005/linguabridge/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.TranslationSession) (*models.TranslationSession, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO translation_sessions
		   (id, user_id, original_text, translated_text, source_language, target_language, audio_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	var audioKey sql.NullString
	if s.AudioKey != "" {
		audioKey = sql.NullString{String: s.AudioKey, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.UserID, s.OriginalText, s.TranslatedText, s.SourceLanguage, s.TargetLanguage, audioKey).
		Scan(&s.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

// ListByUser returns up to limit sessions of userID, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.TranslationSession, error) {
	query :=
		`SELECT id, user_id, original_text, translated_text, source_language, target_language, audio_key, created_at
		 FROM translation_sessions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.TranslationSession, 0, limit)
	for rows.Next() {
		s := &models.TranslationSession{}
		var audioKey sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &s.OriginalText, &s.TranslatedText,
			&s.SourceLanguage, &s.TargetLanguage, &audioKey, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s.AudioKey = audioKey.String
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
