package qr

import (
	"context"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Scanner locates and decodes a QR code on a page image. SUNAT vouchers
// print the code near the bottom, so the lower third is tried first; a
// full-frame pass and a try-harder pass follow.
type Scanner struct {
	logger *slog.Logger
}

func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{logger: logger}
}

// Scan returns the decoded QR text, or "" when no code is found. Decode
// failures are expected on most pages and never abort processing.
func (s *Scanner) Scan(ctx context.Context, img image.Image) string {
	if img == nil {
		return ""
	}

	bounds := img.Bounds()
	lower := imaging.Crop(img, image.Rect(
		bounds.Min.X, bounds.Min.Y+bounds.Dy()*2/3, bounds.Max.X, bounds.Max.Y))

	if txt := decodeQR(lower, false); txt != "" {
		s.logger.Debug("qr.scan.ok", "region", "lower-third", "bytes", len(txt))
		return txt
	}
	if ctx.Err() != nil {
		return ""
	}
	if txt := decodeQR(img, false); txt != "" {
		s.logger.Debug("qr.scan.ok", "region", "full", "bytes", len(txt))
		return txt
	}
	if ctx.Err() != nil {
		return ""
	}
	if txt := decodeQR(img, true); txt != "" {
		s.logger.Debug("qr.scan.ok", "region", "full-try-harder", "bytes", len(txt))
		return txt
	}
	return ""
}

func decodeQR(img image.Image, tryHarder bool) string {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return ""
	}
	var hints map[gozxing.DecodeHintType]interface{}
	if tryHarder {
		hints = map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		}
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return ""
	}
	return result.GetText()
}
