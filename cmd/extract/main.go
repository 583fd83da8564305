package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/vcorp-pe/boleta-engine/internal/common"
	"github.com/vcorp-pe/boleta-engine/internal/extract"
	"github.com/vcorp-pe/boleta-engine/internal/imgprep"
	"github.com/vcorp-pe/boleta-engine/internal/ingest"
	"github.com/vcorp-pe/boleta-engine/internal/ocr"
	"github.com/vcorp-pe/boleta-engine/internal/pipeline"
	"github.com/vcorp-pe/boleta-engine/internal/qr"
	repo "github.com/vcorp-pe/boleta-engine/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "extract <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read input file", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	recognizer := ocr.NewRecognizer(ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		Lang:                cfg.OCR.Lang,
		PSM:                 cfg.OCR.PSM,
		OEM:                 cfg.OCR.OEM,
		TessdataDir:         cfg.OCR.TessdataDir,
		EnableTSVConfidence: cfg.OCR.TSVConfidence,
	}, logger)

	detector := extract.NewDetector(extract.Config{
		HeaderLines:    cfg.Engine.HeaderLines,
		ExcludedTaxIDs: cfg.Engine.ExcludedTaxIDs,
		ExcludedNames:  cfg.Engine.ExcludedNames,
	}, logger)

	engine := pipeline.NewEngine(
		pipeline.Config{WorkerMultiplier: cfg.Engine.WorkerMultiplier},
		ingest.NewResolver(ingest.Config{DPI: cfg.OCR.DPI, MaxPages: cfg.OCR.MaxPages}, logger),
		imgprep.NewPreprocessor(imgprep.Config{Perspective: true}, recognizer, logger),
		recognizer,
		qr.NewScanner(logger),
		detector,
		logger,
	)

	start := time.Now()
	result, err := engine.Process(ctx, ingest.NewBytesSource(path, data))
	if err != nil {
		logger.Error("extraction failed",
			"path", path, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	if dbURL := cfg.Database.DSN; dbURL != "" {
		pool, derr := repo.Open(ctx, repo.Config{
			DSN:             dbURL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if derr != nil {
			logger.Warn("counter database unavailable, using degraded numbering", "error", derr)
		}
		var counters repo.OperationCounterRepository
		if pool != nil {
			defer pool.Close()
			counters = repo.NewOperationCounterRepository(pool, logger)
		} else {
			counters = unavailableCounter{}
		}
		seq := repo.NewSequencer(counters, cfg.Counter.MaxRetries, logger)
		result.OperationNumber = seq.Generate(ctx, cfg.Counter.Prefix)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"id", result.ID,
		"doc_type", result.Fields.DocumentType,
		"pages", len(result.Pages),
		"operation_number", result.OperationNumber,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

type unavailableCounter struct{}

func (unavailableCounter) Next(context.Context, string, time.Time) (int64, error) {
	return 0, common.ErrDatabase
}
