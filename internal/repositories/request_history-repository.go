package repositories

import (
	"context"
	"fmt"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"gearguard/internal/entities"
)

type RequestHistoryRepositoryInterface interface {
	Create(ctx context.Context, history *entities.RequestHistory) error
	FindByRequestID(ctx context.Context, requestID string) ([]*entities.RequestHistory, error)
}

type RequestHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewRequestHistoryRepository(storage *pgxpool.Pool) RequestHistoryRepositoryInterface {
	return &RequestHistoryRepository{storage: storage}
}

func (r *RequestHistoryRepository) Create(ctx context.Context, history *entities.RequestHistory) error {
	query := `
		INSERT INTO request_history (id, request_id, event_type, old_value, new_value, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := getQuerier(ctx, r.storage).Exec(ctx, query,
		history.ID, history.RequestID, string(history.EventType),
		null.StringFromPtr(history.OldValue), null.StringFromPtr(history.NewValue), null.StringFromPtr(history.Comment),
		history.CreatedAt)
	return mapPgError("запись истории заявки", err)
}

func (r *RequestHistoryRepository) FindByRequestID(ctx context.Context, requestID string) ([]*entities.RequestHistory, error) {
	query := `
		SELECT id, request_id, event_type, old_value, new_value, comment, created_at
		FROM request_history
		WHERE request_id = $1
		ORDER BY seq`
	rows, err := getQuerier(ctx, r.storage).Query(ctx, query, requestID)
	if err != nil {
		return nil, mapPgError("история заявки", err)
	}
	defer rows.Close()

	items := make([]*entities.RequestHistory, 0)
	for rows.Next() {
		var h entities.RequestHistory
		var eventType string
		var oldValue, newValue, comment null.String
		if err := rows.Scan(&h.ID, &h.RequestID, &eventType, &oldValue, &newValue, &comment, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования request_history: %w", err)
		}
		h.EventType = entities.HistoryEventType(eventType)
		h.OldValue = oldValue.Ptr()
		h.NewValue = newValue.Ptr()
		h.Comment = comment.Ptr()
		items = append(items, &h)
	}
	return items, rows.Err()
}
