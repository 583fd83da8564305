package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "spa"

	TessdataDir         string
	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Recognition is the outcome for one page image.
type Recognition struct {
	Text       string
	Confidence float32
	Warnings   []string
}

// Recognizer drives the tesseract binary through a Runner so tests can
// stub the process boundary.
type Recognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRecognizer(cfg Config, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "spa"
	}
	return &Recognizer{cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

// WithRunner swaps the process runner; tests use this.
func (r *Recognizer) WithRunner(runner Runner) *Recognizer {
	r.runner = runner
	return r
}

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

// Recognize OCRs a single page image.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image) (Recognition, error) {
	path, cleanup, err := writeTempPNG(img)
	if err != nil {
		return Recognition{}, err
	}
	defer cleanup()

	args := []string{path, "stdout", "-l", r.cfg.Lang}
	if r.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(r.cfg.PSM))
	}
	if r.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(r.cfg.OEM))
	}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}

	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return Recognition{Warnings: []string{string(errb)}}, fmt.Errorf("tesseract: %w", err)
	}

	txt := reBoxNoise.ReplaceAllString(string(out), "")

	var ocrConf float32
	var warns []string
	if r.cfg.EnableTSVConfidence {
		if c, err2 := r.tsvConfidence(ctx, path); err2 == nil {
			ocrConf = c
		} else {
			warns = append(warns, err2.Error())
		}
	}
	heurConf := heuristicConfidence(txt)

	// blend: weight the engine's own estimate higher when present
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	return Recognition{Text: txt, Confidence: conf, Warnings: warns}, nil
}

// tsvConfidence reruns tesseract in TSV mode and returns the mean word
// confidence in 0..1.
func (r *Recognizer) tsvConfidence(ctx context.Context, path string) (float32, error) {
	args := []string{path, "stdout", "-l", r.cfg.Lang}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %s: %w", truncate(string(errb), 256), err)
	}

	var sum, n float64
	for i, ln := range strings.Split(string(out), "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		} // skip header
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[len(cols)-1]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float32(sum / n / 100.0), nil
}

var (
	reOSDRotate = regexp.MustCompile(`Rotate:\s*(\d+)`)
	reOSDDeskew = regexp.MustCompile(`Deskew angle:\s*(-?\d+(?:\.\d+)?)`)
)

// DetectOrientation runs tesseract OSD (--psm 0) and returns the clockwise
// rotation, in degrees, that puts the page upright. The coarse 0/90/180/270
// value and the fine deskew angle are combined.
func (r *Recognizer) DetectOrientation(ctx context.Context, img image.Image) (float64, error) {
	path, cleanup, err := writeTempPNG(img)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	args := []string{path, "stdout", "--psm", "0"}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}

	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract OSD: %s: %w", truncate(string(errb), 256), err)
	}

	// OSD writes to stdout or stderr depending on the build
	report := string(out) + "\n" + string(errb)
	var deg float64
	if m := reOSDRotate.FindStringSubmatch(report); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			deg = v
		}
	}
	if m := reOSDDeskew.FindStringSubmatch(report); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			deg += v
		}
	}
	return deg, nil
}

func writeTempPNG(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "boleta-page-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("temp page file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", nil, fmt.Errorf("encode page png: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", nil, err
	}
	name := f.Name()
	return name, func() { _ = os.Remove(name) }, nil
}
