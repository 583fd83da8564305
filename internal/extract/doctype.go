package extract

import (
	"regexp"

	"github.com/vcorp-pe/boleta-engine/constants"
)

// docTypePatterns is an ordered list: electronic subtypes before their
// generic forms, so "FACTURA ELECTRONICA" never classifies as plain
// FACTURA. Patterns include recurrent OCR garblings (B0LETA, F@CTURA is
// stripped to F CTURA by normalization, RECIB0).
var docTypePatterns = []struct {
	docType constants.DocumentType
	re      *regexp.Regexp
}{
	{constants.DocTypeFacturaElectronica, regexp.MustCompile(`FACTURA\s+ELECTRONICA|F\s?CTURA\s+ELECTRONICA`)},
	{constants.DocTypeBoletaElectronica, regexp.MustCompile(`B[O0]LETA\s+(DE\s+VENTA\s+)?ELECTRONICA`)},
	{constants.DocTypeNotaCredito, regexp.MustCompile(`N[O0]TA\s+DE\s+CREDIT[O0]`)},
	{constants.DocTypeNotaDebito, regexp.MustCompile(`N[O0]TA\s+DE\s+DEBIT[O0]`)},
	{constants.DocTypeReciboHonorarios, regexp.MustCompile(`RECIB[O0]\s+(P[O0]R\s+)?H[O0]N[O0]RARI[O0]S|R\.H\.|SERVICI[O0]S\s+PR[O0]FESI[O0]NALES`)},
	{constants.DocTypeFactura, regexp.MustCompile(`FACTURA|F\s?CTURA`)},
	{constants.DocTypeBoleta, regexp.MustCompile(`B[O0]LETA|B\.V\.`)},
}

// ClassifyDocumentType returns the first matching document type in
// specificity order, or OTHER.
func (d *Detector) ClassifyDocumentType(text string) constants.DocumentType {
	for _, p := range docTypePatterns {
		if p.re.MatchString(text) {
			return p.docType
		}
	}
	return constants.DocTypeOther
}
