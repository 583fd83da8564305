package ingest

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"

	"github.com/vcorp-pe/boleta-engine/constants"
	"github.com/vcorp-pe/boleta-engine/internal/common"
	"github.com/vcorp-pe/boleta-engine/internal/entity"
)

// SourceKind discriminates the input sum type.
type SourceKind int

const (
	// KindNativeText is text already extracted by an upstream system.
	KindNativeText SourceKind = iota
	// KindImage is a decoded raster frame.
	KindImage
	// KindBytes is an encoded document: PDF, JPEG/PNG or HEIC.
	KindBytes
)

// Source is the single entry type for the engine. Exactly one payload
// field is set, per Kind.
type Source struct {
	Kind  SourceKind
	Name  string
	Text  string
	Image image.Image
	Data  []byte
}

func NewTextSource(name, text string) Source {
	return Source{Kind: KindNativeText, Name: name, Text: text}
}

func NewImageSource(name string, img image.Image) Source {
	return Source{Kind: KindImage, Name: name, Image: img}
}

func NewBytesSource(name string, data []byte) Source {
	return Source{Kind: KindBytes, Name: name, Data: data}
}

// Resolver turns a Source into raw pages ready for the pipeline.
type Resolver struct {
	cfg    Config
	logger *slog.Logger
}

// Config bounds page resolution.
type Config struct {
	DPI      int // rasterization DPI for PDFs
	MaxPages int // 0 = no limit
}

func NewResolver(cfg Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	return &Resolver{cfg: cfg, logger: logger}
}

// Resolve produces the page list and the detected source format.
// Encoded bytes are sniffed by magic numbers, never by file name: PDFs
// yield one page per document page with native text and a rendered frame,
// HEIC and standard raster formats yield a single image page with EXIF
// orientation already applied.
func (r *Resolver) Resolve(src Source) ([]entity.RawPage, string, error) {
	switch src.Kind {
	case KindNativeText:
		return []entity.RawPage{{Index: 0, Text: src.Text}}, constants.TEXT, nil

	case KindImage:
		if src.Image == nil {
			return nil, "", common.NewAppError("INGEST_EMPTY", "image source without image", common.ErrMalformedInput)
		}
		return []entity.RawPage{{Index: 0, Image: src.Image}}, constants.IMAGE, nil

	case KindBytes:
		if len(src.Data) == 0 {
			return nil, "", common.NewAppError("INGEST_EMPTY", "byte source without data", common.ErrMalformedInput)
		}
		if constants.IsPDFData(src.Data) {
			pages, err := r.resolvePDF(src.Data)
			return pages, constants.PDF, err
		}
		img, err := r.decodeImage(src.Data)
		if err != nil {
			return nil, "", common.NewAppError("INGEST_DECODE", "undecodable input", common.ErrUnsupportedFormat)
		}
		return []entity.RawPage{{Index: 0, Image: img}}, constants.IMAGE, nil

	default:
		return nil, "", fmt.Errorf("unknown source kind %d", src.Kind)
	}
}

func (r *Resolver) decodeImage(data []byte) (image.Image, error) {
	if constants.IsHEICData(data) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode heic: %w", err)
		}
		return img, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
