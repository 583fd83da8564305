package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vcorp-pe/boleta-engine/internal/common"
)

// OperationCounterRepository hands out strictly increasing per-prefix,
// per-day sequence values.
type OperationCounterRepository interface {
	Next(ctx context.Context, prefix string, day time.Time) (int64, error)
}

type pgOperationCounterRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewOperationCounterRepository(pool *pgxpool.Pool, logger *slog.Logger) OperationCounterRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &pgOperationCounterRepository{pool: pool, logger: logger}
}

// Next increments and returns the counter in one atomic upsert, so
// concurrent callers across processes can never observe the same value.
func (r *pgOperationCounterRepository) Next(ctx context.Context, prefix string, day time.Time) (int64, error) {
	const q = `
		INSERT INTO operation_counter (prefix, day, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, day)
		DO UPDATE SET value = operation_counter.value + 1, updated_at = now()
		RETURNING value`

	var value int64
	err := r.pool.QueryRow(ctx, q, prefix, day.Format("2006-01-02")).Scan(&value)
	if err != nil {
		r.logger.Error("opcounter.next.failed", "prefix", prefix, "error", err)
		return 0, common.NewAppError("COUNTER_NEXT", "increment operation counter", common.ErrDatabase)
	}
	return value, nil
}

// Sequencer mints operation numbers shaped PREFIX-YYYYMMDD-NNNN. Numbering
// never blocks a document: when the counter store is unreachable after the
// retry budget, a degraded timestamp-plus-entropy identifier is issued and
// logged.
type Sequencer struct {
	repo       OperationCounterRepository
	maxRetries int
	logger     *slog.Logger
	now        func() time.Time
}

func NewSequencer(repo OperationCounterRepository, maxRetries int, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Sequencer{repo: repo, maxRetries: maxRetries, logger: logger, now: time.Now}
}

// WithClock overrides the time source; tests use this.
func (s *Sequencer) WithClock(now func() time.Time) *Sequencer {
	s.now = now
	return s
}

// Generate returns the next operation number for the prefix. The degraded
// fallback keeps ids sortable by timestamp and unique via a uuid suffix.
func (s *Sequencer) Generate(ctx context.Context, prefix string) string {
	now := s.now()
	day := now.Format("20060102")

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		value, err := s.repo.Next(ctx, prefix, now)
		if err == nil {
			return fmt.Sprintf("%s-%s-%04d", prefix, day, value)
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	id := fmt.Sprintf("%s-%s-T%d-%s", prefix, day, now.UnixNano(),
		strings.ToUpper(uuid.NewString()[:8]))
	s.logger.Warn("opcounter.degraded",
		"prefix", prefix, "operation_number", id, "error", lastErr)
	return id
}
