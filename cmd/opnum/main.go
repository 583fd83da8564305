package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/vcorp-pe/boleta-engine/internal/common"
	repo "github.com/vcorp-pe/boleta-engine/internal/repository"
)

// opnum mints one operation number against the counter database. Useful
// for smoke-testing a deployment and for manual corrections.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL required")
		os.Exit(1)
	}

	prefix := cfg.Counter.Prefix
	if len(os.Args) == 2 {
		prefix = os.Args[1]
	} else if len(os.Args) > 2 {
		logger.Error("usage", "cmd", "opnum [prefix]")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	seq := repo.NewSequencer(repo.NewOperationCounterRepository(pool, logger),
		cfg.Counter.MaxRetries, logger)
	fmt.Println(seq.Generate(ctx, prefix))
}
