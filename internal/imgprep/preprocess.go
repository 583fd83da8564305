package imgprep

import (
	"context"
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"
)

// OrientationDetector reports the clockwise rotation, in degrees, needed
// to put a page upright. The ocr package implements it with tesseract OSD.
type OrientationDetector interface {
	DetectOrientation(ctx context.Context, img image.Image) (float64, error)
}

// Config tunes the preprocessing chain. Zero values get defaults.
type Config struct {
	MaxWidth    int  // downscale ceiling; never upscale
	MinHeight   int  // never downscale below this height
	BlockSize   int  // adaptive threshold neighborhood
	Bias        int  // adaptive threshold bias
	Contrast    float64
	Sigma       float64 // denoise blur sigma
	Perspective bool
}

// Result carries the two artifacts downstream stages need: a binarized
// frame for OCR and the geometry-corrected continuous-tone frame, which QR
// decoding prefers.
type Result struct {
	ForOCR image.Image
	ForQR  image.Image
}

// Preprocessor runs the camera-cleanup chain: portrait forcing, detected
// rotation, perspective correction, bounded resize, then grayscale,
// contrast, light denoise and adaptive binarization. Geometry steps are
// best-effort: any failure keeps the previous frame and processing
// continues.
type Preprocessor struct {
	cfg    Config
	osd    OrientationDetector
	logger *slog.Logger
}

func NewPreprocessor(cfg Config, osd OrientationDetector, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = 1500
	}
	if cfg.MinHeight <= 0 {
		cfg.MinHeight = 400
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 35
	}
	if cfg.Bias == 0 {
		cfg.Bias = 11
	}
	if cfg.Contrast == 0 {
		cfg.Contrast = 15
	}
	if cfg.Sigma == 0 {
		cfg.Sigma = 0.6
	}
	return &Preprocessor{cfg: cfg, osd: osd, logger: logger}
}

// Prepare runs the full chain. EXIF orientation is expected to be applied
// at decode time (imaging.AutoOrientation); this chain handles everything
// after that.
func (p *Preprocessor) Prepare(ctx context.Context, img image.Image) Result {
	if img == nil {
		return Result{}
	}

	// receipts are portrait; a landscape frame is a sideways photo
	if b := img.Bounds(); b.Dx() > b.Dy() {
		img = imaging.Rotate270(img)
	}

	if p.osd != nil {
		if deg, err := p.osd.DetectOrientation(ctx, img); err != nil {
			p.logger.Debug("imgprep.osd.skip", "error", err)
		} else if deg != 0 {
			img = imaging.Rotate(img, -deg, color.White)
			p.logger.Debug("imgprep.osd.rotated", "degrees", deg)
		}
	}

	if p.cfg.Perspective {
		if q, ok := detectDocumentQuad(toGray(img)); ok {
			img = warpPerspective(img, q)
			p.logger.Debug("imgprep.perspective.warped")
		}
	}

	img = p.boundSize(img)
	forQR := img

	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, p.cfg.Contrast)
	gray = imaging.Blur(gray, p.cfg.Sigma)
	binarized := adaptiveBinarize(toGray(gray), p.cfg.BlockSize, p.cfg.Bias)

	return Result{ForOCR: binarized, ForQR: forQR}
}

// boundSize caps width at MaxWidth without ever upscaling or shrinking
// the page below MinHeight.
func (p *Preprocessor) boundSize(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= p.cfg.MaxWidth {
		return img
	}
	newH := b.Dy() * p.cfg.MaxWidth / b.Dx()
	if newH < p.cfg.MinHeight {
		return img
	}
	return imaging.Resize(img, p.cfg.MaxWidth, 0, imaging.Lanczos)
}
