package extract

import (
	"log/slog"
	"strings"
	"time"

	"github.com/vcorp-pe/boleta-engine/internal/entity"
)

// Detector runs the field-detection suite over normalized document text.
// All state is per-instance: exclusion sets, scoring weights and the clock
// are injected, so concurrent documents never share mutable data.
type Detector struct {
	cfg    Config
	lookup NameLookup
	logger *slog.Logger
	now    func() time.Time
}

// Config tunes the detector suite. Zero values get sensible defaults in
// NewDetector.
type Config struct {
	// HeaderLines bounds the top-of-document window scanned for the tax
	// identifier and supplier name.
	HeaderLines int

	// ExcludedTaxIDs are identifiers that must never be reported as the
	// counterparty (typically the processing company's own RUC).
	ExcludedTaxIDs []string

	// ExcludedNames are normalized business names rejected as the
	// counterparty (the company's own razón social and OCR variants).
	ExcludedNames []string

	// Document-number candidate weights.
	PrefixBonus    int // series starts with a known voucher prefix letter
	CompactBonus   int // no separator between series and correlative
	LengthBonus    int // correlative of 6+ digits
	AdjacencyBonus int // candidate sits next to the tax-identifier line

	// DateWindowYears bounds how far in the past an issue date may lie.
	DateWindowYears int
}

// Option customizes a Detector.
type Option func(*Detector)

// WithNameLookup wires a tax-ID to business-name resolver; when it answers,
// name detection short-circuits the heuristics.
func WithNameLookup(l NameLookup) Option {
	return func(d *Detector) { d.lookup = l }
}

// WithClock overrides the time source used for date-window validation.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

func NewDetector(cfg Config, logger *slog.Logger, opts ...Option) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HeaderLines <= 0 {
		cfg.HeaderLines = 20
	}
	if cfg.PrefixBonus == 0 {
		cfg.PrefixBonus = 3
	}
	if cfg.CompactBonus == 0 {
		cfg.CompactBonus = 1
	}
	if cfg.LengthBonus == 0 {
		cfg.LengthBonus = 2
	}
	if cfg.AdjacencyBonus == 0 {
		cfg.AdjacencyBonus = 10
	}
	if cfg.DateWindowYears <= 0 {
		cfg.DateWindowYears = 5
	}
	d := &Detector{cfg: cfg, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs every detector over already-normalized text and returns the
// recovered fields. Absent fields come back as empty strings except Total,
// which is always a two-decimal string ("0.00" when nothing was found).
// Detection order matters: the tax-identifier line anchors document-number
// scoring, and the document-number line anchors date tie-breaking.
func (d *Detector) Detect(text string) entity.Fields {
	lines := strings.Split(text, "\n")
	if text == "" {
		lines = nil
	}

	taxID, taxLine := d.detectTaxID(lines)
	docNumber, docLine := d.detectDocumentNumber(lines, taxID, taxLine)
	issueDate := d.detectIssueDate(lines, docLine)
	name := d.detectSupplierName(lines, taxID, taxLine)
	total := d.detectTotal(text, taxID, docNumber)
	docType := d.ClassifyDocumentType(text)

	d.logger.Debug("extract.detect.done",
		"tax_id_found", taxID != "",
		"doc_number_found", docNumber != "",
		"date_found", issueDate != "",
		"name_found", name != "",
		"total", total,
		"doc_type", docType,
	)

	return entity.Fields{
		TaxID:          taxID,
		SupplierName:   name,
		DocumentNumber: docNumber,
		IssueDate:      issueDate,
		Total:          total,
		DocumentType:   docType,
	}
}

func (d *Detector) headerWindow(lines []string) []string {
	if len(lines) > d.cfg.HeaderLines {
		return lines[:d.cfg.HeaderLines]
	}
	return lines
}

func (d *Detector) isExcludedTaxID(id string) bool {
	for _, x := range d.cfg.ExcludedTaxIDs {
		if id == x {
			return true
		}
	}
	return false
}

func (d *Detector) isExcludedName(name string) bool {
	for _, x := range d.cfg.ExcludedNames {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(x)) {
			return true
		}
	}
	return false
}
