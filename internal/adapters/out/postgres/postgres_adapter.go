package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospitalred/appointment-booking-service/internal/config"
	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/out"
)

// Имя частичного уникального индекса по активному слоту, см. migrations/0001_init.sql.
// Нарушение именно этого ограничения означает проигранную гонку за слот.
const activeSlotConstraint = "uq_appointments_active_slot"

type PostgresAdapter struct {
	pool      *pgxpool.Pool
	cfg       *config.Config
	logger    out.LoggerPort
	occupying []string
}

func NewPostgresAdapter(ctx context.Context, cfg *config.Config, logger out.LoggerPort) (*PostgresAdapter, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = cfg.Postgres.MaxConns
	poolCfg.MinConns = cfg.Postgres.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	occupying := make([]string, 0, len(cfg.Booking.OccupyingStatuses))
	for _, status := range cfg.Booking.OccupyingStatuses {
		occupying = append(occupying, string(status))
	}

	return &PostgresAdapter{
		pool:      pool,
		cfg:       cfg,
		logger:    logger.WithModule("PostgresAdapter"),
		occupying: occupying,
	}, nil
}

func (a *PostgresAdapter) Close() {
	a.pool.Close()
}

func (a *PostgresAdapter) Ping(ctx context.Context) error {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()
	return a.pool.Ping(ctx)
}

// queryCtx ограничивает каждый поход в хранилище таймаутом из конфига
func (a *PostgresAdapter) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.Postgres.QueryTimeout)
}

// storeErr классифицирует ошибку хранилища: таймауты и обрывы соединения
// отдаются как TransientStoreError, остальное просто оборачивается
func (a *PostgresAdapter) storeErr(op string, err error) error {
	if isTransient(err) {
		return &domain.TransientStoreError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation - нарушение уникальности активного слота,
// то есть конкурентное бронирование того же времени
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == activeSlotConstraint
	}
	return false
}

// isTransient - таймаут или обрыв соединения, вызывающая сторона может повторить
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return pgconn.Timeout(err)
}
