package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/derivex-service/internal/entity"
)

type TokenIDRepository struct {
	db *sqlx.DB
}

func NewTokenIDRepository(db *sqlx.DB) *TokenIDRepository {
	return &TokenIDRepository{db: db}
}

func (r *TokenIDRepository) GetAll(ctx context.Context) ([]entity.TokenID, error) {
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("id", "token", "created_at", "updated_at").
		From(entity.TokenID{}.TableName()).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var tokenIDs []entity.TokenID
	err = r.db.SelectContext(ctx, &tokenIDs, query, args...)
	return tokenIDs, err
}

// GetByID returns nil without error when id is unknown.
func (r *TokenIDRepository) GetByID(ctx context.Context, id uint64) (*entity.TokenID, error) {
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("id", "token", "created_at", "updated_at").
		From(entity.TokenID{}.TableName()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var tokenID entity.TokenID
	err = r.db.GetContext(ctx, &tokenID, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &tokenID, nil
}

func (r *TokenIDRepository) Upsert(ctx context.Context, id uint64, token string) error {
	now := time.Now().UTC()
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(entity.TokenID{}.TableName()).
		Columns("id", "token", "created_at", "updated_at").
		Values(id, token, now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
