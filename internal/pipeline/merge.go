package pipeline

import (
	"github.com/vcorp-pe/boleta-engine/constants"
	"github.com/vcorp-pe/boleta-engine/internal/entity"
	"github.com/vcorp-pe/boleta-engine/internal/qr"
)

// mergeFields applies per-field precedence: a non-empty QR value beats
// OCR, OCR beats nothing, and documented defaults fill what remains. The
// origin map records the winning source for every field.
func mergeFields(ocrFields entity.Fields, p qr.Payload) (entity.Fields, map[string]entity.FieldOrigin) {
	origins := make(map[string]entity.FieldOrigin, 6)

	pickStr := func(field, qrVal, ocrVal, def string) string {
		switch {
		case qrVal != "":
			origins[field] = entity.OriginQR
			return qrVal
		case ocrVal != "":
			origins[field] = entity.OriginOCR
			return ocrVal
		default:
			origins[field] = entity.OriginDefault
			return def
		}
	}

	out := entity.Fields{
		TaxID:          pickStr(entity.FieldTaxID, p.TaxID, ocrFields.TaxID, constants.DefaultTaxID),
		DocumentNumber: pickStr(entity.FieldDocumentNumber, p.DocumentNumber, ocrFields.DocumentNumber, constants.DefaultDocumentNumber),
		IssueDate:      pickStr(entity.FieldIssueDate, p.IssueDate, ocrFields.IssueDate, ""),
		SupplierName:   pickStr(entity.FieldSupplierName, "", ocrFields.SupplierName, constants.DefaultSupplierName),
	}

	// the QR total is authoritative when present and non-zero
	switch {
	case p.Total != "" && p.Total != constants.DefaultTotal:
		out.Total = p.Total
		origins[entity.FieldTotal] = entity.OriginQR
	case ocrFields.Total != "" && ocrFields.Total != constants.DefaultTotal:
		out.Total = ocrFields.Total
		origins[entity.FieldTotal] = entity.OriginOCR
	default:
		out.Total = constants.DefaultTotal
		origins[entity.FieldTotal] = entity.OriginDefault
	}

	switch {
	case p.DocumentType != "":
		out.DocumentType = p.DocumentType
		origins[entity.FieldDocumentType] = entity.OriginQR
	case ocrFields.DocumentType != "" && ocrFields.DocumentType != constants.DocTypeOther:
		out.DocumentType = ocrFields.DocumentType
		origins[entity.FieldDocumentType] = entity.OriginOCR
	default:
		out.DocumentType = constants.DocTypeOther
		origins[entity.FieldDocumentType] = entity.OriginDefault
	}

	return out, origins
}
