package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcorp-pe/boleta-engine/constants"
)

func testClock() func() time.Time {
	return func() time.Time {
		return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	}
}

func newTestDetector(t *testing.T, opts ...Option) *Detector {
	t.Helper()
	opts = append([]Option{WithClock(testClock())}, opts...)
	return NewDetector(Config{
		ExcludedTaxIDs: []string{"20508558997"},
		ExcludedNames:  []string{"V & C CORPORATION S.A.C"},
	}, nil, opts...)
}

func TestDetectTaxID(t *testing.T) {
	d := newTestDetector(t)

	t.Run("keyword line wins", func(t *testing.T) {
		text := Normalize("algo 20999999991 irrelevante\nRUC: 20123456789\nTOTAL 9.00")
		fields := d.Detect(text)
		assert.Equal(t, "20123456789", fields.TaxID)
	})

	t.Run("misread keyword accepted", func(t *testing.T) {
		fields := d.Detect(Normalize("RUG 10456789012"))
		assert.Equal(t, "10456789012", fields.TaxID)
	})

	t.Run("number on the next line", func(t *testing.T) {
		fields := d.Detect(Normalize("R.U.C.\n20123456789"))
		assert.Equal(t, "20123456789", fields.TaxID)
	})

	t.Run("bad prefix rejected", func(t *testing.T) {
		fields := d.Detect(Normalize("RUC 99123456789"))
		assert.Empty(t, fields.TaxID)
	})

	t.Run("only excluded identifiers yields empty", func(t *testing.T) {
		fields := d.Detect(Normalize("RUC 20508558997\notra linea 20508558997"))
		assert.Empty(t, fields.TaxID)
	})
}

func TestDetectDocumentNumber(t *testing.T) {
	d := newTestDetector(t)

	t.Run("canonical series-correlative", func(t *testing.T) {
		fields := d.Detect(Normalize("FACTURA ELECTRONICA\nF001-00001234"))
		assert.Equal(t, "F001-00001234", fields.DocumentNumber)
	})

	t.Run("misread digits corrected", func(t *testing.T) {
		fields := d.Detect(Normalize("BOLETA DE VENTA\nB0O1-0000I234"))
		assert.Equal(t, "B001-00001234", fields.DocumentNumber)
	})

	t.Run("never the tax id nor an eight digit id", func(t *testing.T) {
		text := Normalize("RUC 20123456789\nDNI 45678912\nF001-000123")
		fields := d.Detect(text)
		require.Equal(t, "20123456789", fields.TaxID)
		assert.Equal(t, "F001-000123", fields.DocumentNumber)
		assert.NotContains(t, fields.DocumentNumber, "45678912")
	})

	t.Run("adjacency to the identifier line outranks length", func(t *testing.T) {
		text := Normalize("T001 999999999999\nlinea\nlinea\nRUC 20123456789\nF001-123456")
		fields := d.Detect(text)
		assert.Equal(t, "F001-123456", fields.DocumentNumber)
	})

	t.Run("no candidate", func(t *testing.T) {
		fields := d.Detect(Normalize("GRACIAS POR SU COMPRA"))
		assert.Empty(t, fields.DocumentNumber)
	})
}

func TestDetectIssueDate(t *testing.T) {
	d := newTestDetector(t)

	t.Run("numeric date", func(t *testing.T) {
		fields := d.Detect(Normalize("FECHA EMISION 15/03/2024"))
		assert.Equal(t, "2024-03-15", fields.IssueDate)
	})

	t.Run("month name with SET", func(t *testing.T) {
		fields := d.Detect(Normalize("EMITIDO EL 02 SET 2023"))
		assert.Equal(t, "2023-09-02", fields.IssueDate)
	})

	t.Run("due date line skipped", func(t *testing.T) {
		text := Normalize("FECHA EMISION 15/03/2024\nF. VENC 20/07/2024")
		fields := d.Detect(text)
		assert.Equal(t, "2024-03-15", fields.IssueDate)
	})

	t.Run("anchor proximity breaks ties", func(t *testing.T) {
		text := Normalize("impreso el 01/02/2024\nlinea\nFECHA DE EMISION\n15/03/2024")
		fields := d.Detect(text)
		assert.Equal(t, "2024-03-15", fields.IssueDate)
	})

	t.Run("stale and future dates rejected", func(t *testing.T) {
		for _, raw := range []string{"15/03/2010", "15/03/2025", "32/01/2024", "15/13/2023"} {
			fields := d.Detect(Normalize("FECHA " + raw))
			assert.Empty(t, fields.IssueDate, "input %q", raw)
		}
	})
}

func TestDetectSupplierName(t *testing.T) {
	d := newTestDetector(t)

	t.Run("legal suffix on one line", func(t *testing.T) {
		fields := d.Detect(Normalize("COMERCIAL LOS ANDES S.A.C\nRUC 20123456789"))
		assert.Equal(t, "COMERCIAL LOS ANDES S.A.C", fields.SupplierName)
	})

	t.Run("suffix split across lines", func(t *testing.T) {
		fields := d.Detect(Normalize("DISTRIBUIDORA CENTRAL\nDEL PERU S.A.C\nRUC 20123456789"))
		assert.Equal(t, "DISTRIBUIDORA CENTRAL DEL PERU S.A.C", fields.SupplierName)
	})

	t.Run("client block never wins", func(t *testing.T) {
		text := Normalize("TIENDA EL SOL E.I.R.L\nCLIENTE\nACME TRADING S.A.C")
		fields := d.Detect(text)
		assert.Equal(t, "TIENDA EL SOL E.I.R.L", fields.SupplierName)
	})

	t.Run("own name excluded", func(t *testing.T) {
		fields := d.Detect(Normalize("V & C CORPORATION S.A.C\nRUC 20508558997"))
		assert.Empty(t, fields.SupplierName)
	})

	t.Run("lookup short-circuits heuristics", func(t *testing.T) {
		lk := StaticNameLookup{"20123456789": "FERRETERIA UNION S.A."}
		dl := newTestDetector(t, WithNameLookup(lk))
		fields := dl.Detect(Normalize("RUC 20123456789\nTEXTO ILEGIBLE"))
		assert.Equal(t, "FERRETERIA UNION S.A.", fields.SupplierName)
	})
}

func TestDetectTotal(t *testing.T) {
	d := newTestDetector(t)

	t.Run("labeled line wins over larger amounts", func(t *testing.T) {
		text := Normalize("ITEM 9,999.99\nTOTAL A PAGAR 1,250.00")
		fields := d.Detect(text)
		assert.Equal(t, "1250.00", fields.Total)
	})

	t.Run("currency mark tier", func(t *testing.T) {
		fields := d.Detect(Normalize("IMPORTE S/ 89.50"))
		assert.Equal(t, "89.50", fields.Total)
	})

	t.Run("six-figure totals keep their cents", func(t *testing.T) {
		fields := d.Detect(Normalize("TOTAL A PAGAR 123,456.78"))
		assert.Equal(t, "123456.78", fields.Total)
	})

	t.Run("identifier collisions are not amounts", func(t *testing.T) {
		text := Normalize("RUC 20123456789\nF001-00001234\nTOTAL 45.90")
		fields := d.Detect(text)
		assert.Equal(t, "45.90", fields.Total)
	})

	t.Run("no token means zero default", func(t *testing.T) {
		fields := d.Detect(Normalize("GRACIAS POR SU COMPRA"))
		assert.Equal(t, "0.00", fields.Total)
	})
}

func TestClassifyDocumentType(t *testing.T) {
	d := newTestDetector(t)
	tests := []struct {
		in   string
		want constants.DocumentType
	}{
		{"FACTURA ELECTRONICA", constants.DocTypeFacturaElectronica},
		{"BOLETA DE VENTA ELECTRONICA", constants.DocTypeBoletaElectronica},
		{"B0LETA DE VENTA", constants.DocTypeBoleta},
		{"F@CTURA", constants.DocTypeFactura},
		{"NOTA DE CREDITO", constants.DocTypeNotaCredito},
		{"RECIBO POR HONORARIOS", constants.DocTypeReciboHonorarios},
		{"GRACIAS POR SU COMPRA", constants.DocTypeOther},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, d.ClassifyDocumentType(Normalize(tt.in)))
		})
	}
}

func TestDetectTypicalVoucher(t *testing.T) {
	d := newTestDetector(t)
	text := Normalize("RUC: 20123456789\nTOTAL A PAGAR: 1,250.00\nFECHA EMISION 15/03/2024\nF001-00001234")

	fields := d.Detect(text)

	assert.Equal(t, "20123456789", fields.TaxID)
	assert.Equal(t, "1250.00", fields.Total)
	assert.Equal(t, "2024-03-15", fields.IssueDate)
	assert.Equal(t, "F001-00001234", fields.DocumentNumber)
}

func TestDetectEmptyInput(t *testing.T) {
	d := newTestDetector(t)

	fields := d.Detect("")

	assert.Empty(t, fields.TaxID)
	assert.Empty(t, fields.SupplierName)
	assert.Empty(t, fields.DocumentNumber)
	assert.Empty(t, fields.IssueDate)
	assert.Equal(t, "0.00", fields.Total)
	assert.Equal(t, constants.DocTypeOther, fields.DocumentType)
}
