package constants

// DocumentType is the canonical classification for a processed document.
type DocumentType string

// Stable values (store these exact strings downstream).
const (
	DocTypeFacturaElectronica DocumentType = "FACTURA_ELECTRONICA"
	DocTypeBoletaElectronica  DocumentType = "BOLETA_ELECTRONICA"
	DocTypeNotaCredito        DocumentType = "NOTA_CREDITO"
	DocTypeNotaDebito         DocumentType = "NOTA_DEBITO"
	DocTypeReciboHonorarios   DocumentType = "RECIBO_HONORARIOS"
	DocTypeFactura            DocumentType = "FACTURA"
	DocTypeBoleta             DocumentType = "BOLETA"
	DocTypeOther              DocumentType = "OTHER"
)

// QRTypeCodes maps SUNAT e-invoice type codes (second QR segment) to
// document types.
var QRTypeCodes = map[string]DocumentType{
	"01": DocTypeFacturaElectronica,
	"03": DocTypeBoletaElectronica,
	"07": DocTypeNotaCredito,
	"08": DocTypeNotaDebito,
}

// Defaults emitted when a field cannot be recovered from any source.
const (
	DefaultTaxID          = "00000000000"
	DefaultDocumentNumber = "ND"
	DefaultSupplierName   = "RAZON SOCIAL DESCONOCIDA"
	DefaultTotal          = "0.00"
)
