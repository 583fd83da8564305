package pipeline

import (
	"context"
	"image"
	"log/slog"
	"regexp"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vcorp-pe/boleta-engine/internal/entity"
	"github.com/vcorp-pe/boleta-engine/internal/extract"
	"github.com/vcorp-pe/boleta-engine/internal/imgprep"
	"github.com/vcorp-pe/boleta-engine/internal/ingest"
	"github.com/vcorp-pe/boleta-engine/internal/ocr"
	"github.com/vcorp-pe/boleta-engine/internal/qr"
)

// Recognizer is the OCR capability the engine needs per page image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (ocr.Recognition, error)
}

// Preprocessor cleans a camera/scan frame before OCR.
type Preprocessor interface {
	Prepare(ctx context.Context, img image.Image) imgprep.Result
}

// QRScanner finds and decodes a QR code on a page image.
type QRScanner interface {
	Scan(ctx context.Context, img image.Image) string
}

// Config tunes the orchestrator.
type Config struct {
	// WorkerMultiplier scales GOMAXPROCS into the page-worker bound.
	WorkerMultiplier int
}

// Engine orchestrates page resolution, per-page recognition and the final
// field merge.
type Engine struct {
	cfg        Config
	resolver   *ingest.Resolver
	prep       Preprocessor
	recognizer Recognizer
	scanner    QRScanner
	detector   *extract.Detector
	logger     *slog.Logger
}

func NewEngine(
	cfg Config,
	resolver *ingest.Resolver,
	prep Preprocessor,
	recognizer Recognizer,
	scanner QRScanner,
	detector *extract.Detector,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WorkerMultiplier <= 0 {
		cfg.WorkerMultiplier = 2
	}
	return &Engine{
		cfg:        cfg,
		resolver:   resolver,
		prep:       prep,
		recognizer: recognizer,
		scanner:    scanner,
		detector:   detector,
		logger:     logger,
	}
}

// reStructural gates native text: a page body without any fiscal keyword
// is an empty template or a rendering artifact, so OCR runs instead.
var reStructural = regexp.MustCompile(`\bRUC\b|\bTOTAL\b|\bFECHA\b|\bIMPORTE\b`)

// Process runs one document end to end. Individual page failures degrade
// to warnings; the only hard errors are unresolvable inputs.
func (e *Engine) Process(ctx context.Context, src ingest.Source) (*entity.DocumentResult, error) {
	start := time.Now()

	pages, format, err := e.resolver.Resolve(src)
	if err != nil {
		return nil, err
	}

	results := make([]entity.PageResult, len(pages))
	workers := len(pages)
	if bound := e.cfg.WorkerMultiplier * runtime.GOMAXPROCS(0); workers > bound {
		workers = bound
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, pg := range pages {
		wg.Add(1)
		go func(i int, pg entity.RawPage) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.processPage(ctx, pg)
		}(i, pg)
	}
	wg.Wait()

	res := e.assemble(results)
	res.ID = uuid.New()
	res.SourceFormat = format
	res.Duration = time.Since(start)
	res.DurationMS = res.Duration.Milliseconds()

	e.logger.Info("pipeline.document.ok",
		"id", res.ID,
		"format", format,
		"pages", len(pages),
		"doc_type", res.Fields.DocumentType,
		"duration_ms", res.DurationMS,
	)
	return res, nil
}

// processPage is the per-page state machine: trust native text when it
// carries structure, otherwise preprocess and OCR the frame; scan for a
// QR code whenever an image exists.
func (e *Engine) processPage(ctx context.Context, pg entity.RawPage) entity.PageResult {
	start := time.Now()
	res := entity.PageResult{Index: pg.Index}

	qrFrame := pg.Image

	native := extract.Normalize(pg.Text)
	switch {
	case native != "" && reStructural.MatchString(native):
		res.Method = "native-text"
		res.Text = native
		res.Confidence = 1.0

	case pg.Image != nil:
		res.Method = "image-ocr"
		frame := pg.Image
		if e.prep != nil {
			prepped := e.prep.Prepare(ctx, pg.Image)
			if prepped.ForOCR != nil {
				frame = prepped.ForOCR
			}
			if prepped.ForQR != nil {
				qrFrame = prepped.ForQR
			}
		}
		rec, err := e.recognizer.Recognize(ctx, frame)
		if err != nil {
			e.logger.Warn("pipeline.page.ocr_failed", "page", pg.Index, "error", err)
			res.Warnings = append(res.Warnings, "ocr failed: "+err.Error())
		} else {
			res.Text = extract.Normalize(rec.Text)
			res.Confidence = rec.Confidence
			res.Warnings = append(res.Warnings, rec.Warnings...)
		}

	default:
		// native text exists but has no structure, and there is no frame
		res.Method = "native-text"
		res.Text = native
		if native == "" {
			res.Warnings = append(res.Warnings, "page has no usable content")
		}
	}

	if e.scanner != nil && qrFrame != nil {
		res.QRPayload = e.scanner.Scan(ctx, qrFrame)
	}

	res.Duration = time.Since(start)
	res.DurationMS = res.Duration.Milliseconds()

	e.logger.Debug("pipeline.page.done",
		"page", pg.Index,
		"method", res.Method,
		"bytes", len(res.Text),
		"qr", res.QRPayload != "",
		"duration_ms", res.DurationMS,
	)
	return res
}

// assemble concatenates page text for the whole-document detectors, folds
// QR payloads in page order and merges with OCR precedence rules.
func (e *Engine) assemble(pages []entity.PageResult) *entity.DocumentResult {
	var sb []byte
	var warnings []string
	payload := qr.Payload{}
	for _, p := range pages {
		if p.Text != "" {
			if len(sb) > 0 {
				sb = append(sb, '\n')
			}
			sb = append(sb, p.Text...)
		}
		warnings = append(warnings, p.Warnings...)
		if p.QRPayload != "" {
			if decoded := qr.ParsePayload(p.QRPayload); !decoded.Empty() && payload.Empty() {
				payload = decoded
			}
		}
	}

	ocrFields := e.detector.Detect(string(sb))
	fields, origins := mergeFields(ocrFields, payload)

	return &entity.DocumentResult{
		Fields:   fields,
		Origins:  origins,
		Pages:    pages,
		Warnings: warnings,
	}
}
