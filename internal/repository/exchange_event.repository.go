package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/derivex-service/internal/entity"
)

type ExchangeEventRepository struct {
	db *sqlx.DB
}

func NewExchangeEventRepository(db *sqlx.DB) *ExchangeEventRepository {
	return &ExchangeEventRepository{db: db}
}

// Create stores event. A redelivered event with a known id is ignored.
func (r *ExchangeEventRepository) Create(ctx context.Context, event *entity.ExchangeEvent) error {
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(event.TableName()).
		Columns(
			"id",
			"type",
			"token",
			"factory",
			"server",
			"request_id",
			"occurred_at",
			"recorded_at",
		).
		Values(
			event.ID,
			event.Type,
			event.Token,
			event.Factory,
			event.Server,
			event.RequestID,
			event.OccurredAt,
			time.Now().UTC(),
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *ExchangeEventRepository) GetByToken(ctx context.Context, token string, limit uint64) ([]entity.ExchangeEvent, error) {
	builder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("id", "type", "token", "factory", "server", "request_id", "occurred_at", "recorded_at").
		From(entity.ExchangeEvent{}.TableName()).
		Where(sq.Eq{"token": token}).
		OrderBy("occurred_at DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var events []entity.ExchangeEvent
	err = r.db.SelectContext(ctx, &events, query, args...)
	return events, err
}
