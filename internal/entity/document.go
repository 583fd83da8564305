package entity

import (
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/vcorp-pe/boleta-engine/constants"
)

// FieldOrigin records which source produced a field value.
type FieldOrigin string

const (
	OriginQR      FieldOrigin = "qr"
	OriginOCR     FieldOrigin = "ocr"
	OriginDefault FieldOrigin = "default"
)

// Field names used as keys in the provenance map.
const (
	FieldTaxID          = "tax_id"
	FieldSupplierName   = "supplier_name"
	FieldDocumentNumber = "document_number"
	FieldIssueDate      = "issue_date"
	FieldTotal          = "total"
	FieldDocumentType   = "document_type"
)

// Fields is the structured record recovered from one document.
// Empty strings mean "not found"; defaults are applied at merge time.
type Fields struct {
	TaxID          string                 `json:"tax_id"`
	SupplierName   string                 `json:"supplier_name"`
	DocumentNumber string                 `json:"document_number"`
	IssueDate      string                 `json:"issue_date"` // YYYY-MM-DD
	Total          string                 `json:"total"`      // two decimals
	DocumentType   constants.DocumentType `json:"document_type"`
}

// RawPage is one resolved input page: native text, a raster image, or both.
type RawPage struct {
	Index int
	Text  string
	Image image.Image
}

// PageResult captures what happened to a single page.
type PageResult struct {
	Index      int           `json:"index"`
	Method     string        `json:"method"` // native-text | image-ocr
	Text       string        `json:"-"`
	QRPayload  string        `json:"qr_payload,omitempty"`
	Confidence float32       `json:"confidence,omitempty"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// DocumentResult is the full outcome for a processed document.
type DocumentResult struct {
	ID              uuid.UUID              `json:"id"`
	Fields          Fields                 `json:"fields"`
	Origins         map[string]FieldOrigin `json:"origins"`
	OperationNumber string                 `json:"operation_number,omitempty"`
	SourceFormat    string                 `json:"source_format"`
	Pages           []PageResult           `json:"pages"`
	Duration        time.Duration          `json:"-"`
	DurationMS      int64                  `json:"duration_ms"`
	Warnings        []string               `json:"warnings,omitempty"`
}
