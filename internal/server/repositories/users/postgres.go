package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/linguabridge/internal/common"
	"github.com/dmitrijs2005/linguabridge/internal/dbx"
	"github.com/dmitrijs2005/linguabridge/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user, assigning a new id when it has none. An email that
// is already taken yields common.ErrDuplicateKey.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO users (id, email, name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash).Scan(&user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", common.ErrDuplicateKey, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, name, password_hash, created_at FROM users
		 WHERE email = $1
		 `

	return r.findOne(ctx, query, email)
}

// FindByIDAndEmail returns the user only when both id and email match the
// stored row, in a single round trip.
func (r *PostgresRepository) FindByIDAndEmail(ctx context.Context, id, email string) (*models.User, error) {
	query :=
		`SELECT id, email, name, password_hash, created_at FROM users
		 WHERE id = $1 AND email = $2
		 `

	return r.findOne(ctx, query, id, email)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var rec userRecord
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&rec.ID, &rec.Email, &rec.Name, &rec.PasswordHash, &rec.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec.toUser()
}

// userRecord is the raw row. Columns are nullable here so that a damaged
// row is reported instead of silently zero-filled.
type userRecord struct {
	ID           sql.NullString
	Email        sql.NullString
	Name         sql.NullString
	PasswordHash sql.NullString
	CreatedAt    sql.NullTime
}

func (r userRecord) toUser() (*models.User, error) {
	switch {
	case !r.ID.Valid || uuid.Validate(r.ID.String) != nil:
		return nil, fmt.Errorf("%w: bad id", common.ErrInvalidClaimShape)
	case !r.Email.Valid || r.Email.String == "":
		return nil, fmt.Errorf("%w: missing email", common.ErrInvalidClaimShape)
	case !r.Name.Valid:
		return nil, fmt.Errorf("%w: missing name", common.ErrInvalidClaimShape)
	case !r.PasswordHash.Valid || r.PasswordHash.String == "":
		return nil, fmt.Errorf("%w: missing password hash", common.ErrInvalidClaimShape)
	}

	var createdAt time.Time
	if r.CreatedAt.Valid {
		createdAt = r.CreatedAt.Time
	}

	return &models.User{
		ID:           r.ID.String,
		Email:        r.Email.String,
		Name:         r.Name.String,
		PasswordHash: r.PasswordHash.String,
		CreatedAt:    createdAt,
	}, nil
}
