package repository

import (
	"context"
	"database/sql"
	"time"

	"stopguard/internal/models"
)

// StopEventRepository - работа с таблицей stop_events
//
// Журнал сопровождения: каждая постановка стопа, закрытие позиции
// и смена режима пишутся отдельной строкой. Журнал опционален -
// при отключённой БД цикл работает без него.
type StopEventRepository struct {
	db *sql.DB
}

// NewStopEventRepository создает новый экземпляр репозитория
func NewStopEventRepository(db *sql.DB) *StopEventRepository {
	return &StopEventRepository{db: db}
}

// RecordEvent записывает событие в журнал
func (r *StopEventRepository) RecordEvent(ctx context.Context, event *models.StopEvent) error {
	query := `
		INSERT INTO stop_events (timestamp, type, symbol, position_id, side, stop_price, notional, max_loss, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return r.db.QueryRowContext(ctx, query,
		event.Timestamp,
		event.Type,
		event.Symbol,
		event.PositionID,
		event.Side,
		event.StopPrice,
		event.Notional,
		event.MaxLoss,
		event.Message,
	).Scan(&event.ID)
}

// GetRecent возвращает последние limit событий, новые первыми
func (r *StopEventRepository) GetRecent(ctx context.Context, limit int) ([]models.StopEvent, error) {
	query := `
		SELECT id, timestamp, type, symbol, position_id, side, stop_price, notional, max_loss, message
		FROM stop_events
		ORDER BY timestamp DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.StopEvent
	for rows.Next() {
		var e models.StopEvent
		if err := rows.Scan(
			&e.ID,
			&e.Timestamp,
			&e.Type,
			&e.Symbol,
			&e.PositionID,
			&e.Side,
			&e.StopPrice,
			&e.Notional,
			&e.MaxLoss,
			&e.Message,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// GetBySymbol возвращает события по символу, новые первыми
func (r *StopEventRepository) GetBySymbol(ctx context.Context, symbol string, limit int) ([]models.StopEvent, error) {
	query := `
		SELECT id, timestamp, type, symbol, position_id, side, stop_price, notional, max_loss, message
		FROM stop_events
		WHERE symbol = $1
		ORDER BY timestamp DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.StopEvent
	for rows.Next() {
		var e models.StopEvent
		if err := rows.Scan(
			&e.ID,
			&e.Timestamp,
			&e.Type,
			&e.Symbol,
			&e.PositionID,
			&e.Side,
			&e.StopPrice,
			&e.Notional,
			&e.MaxLoss,
			&e.Message,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// DeleteOlderThan удаляет события старше указанного момента.
// Возвращает количество удалённых строк.
func (r *StopEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stop_events WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
