package pipeline

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcorp-pe/boleta-engine/constants"
	"github.com/vcorp-pe/boleta-engine/internal/entity"
	"github.com/vcorp-pe/boleta-engine/internal/extract"
	"github.com/vcorp-pe/boleta-engine/internal/ingest"
	"github.com/vcorp-pe/boleta-engine/internal/ocr"
	"github.com/vcorp-pe/boleta-engine/internal/qr"
)

type fakeRecognizer struct {
	text  string
	calls int
}

func (f *fakeRecognizer) Recognize(context.Context, image.Image) (ocr.Recognition, error) {
	f.calls++
	return ocr.Recognition{Text: f.text, Confidence: 0.8}, nil
}

type fakeScanner struct {
	payload string
}

func (f *fakeScanner) Scan(context.Context, image.Image) string {
	return f.payload
}

func newTestEngine(rec Recognizer, scan QRScanner) *Engine {
	detector := extract.NewDetector(extract.Config{}, nil,
		extract.WithClock(func() time.Time {
			return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
		}))
	return NewEngine(Config{}, ingest.NewResolver(ingest.Config{}, nil),
		nil, rec, scan, detector, nil)
}

func whiteFrame() image.Image {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func TestProcessNativeTextWithStructure(t *testing.T) {
	rec := &fakeRecognizer{}
	e := newTestEngine(rec, nil)

	src := ingest.NewTextSource("v.txt",
		"RUC: 20123456789\nTOTAL A PAGAR: 1,250.00\nFECHA EMISION 15/03/2024\nF001-00001234")
	res, err := e.Process(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 0, rec.calls)
	require.Len(t, res.Pages, 1)
	assert.Equal(t, "native-text", res.Pages[0].Method)

	assert.Equal(t, "20123456789", res.Fields.TaxID)
	assert.Equal(t, "1250.00", res.Fields.Total)
	assert.Equal(t, "2024-03-15", res.Fields.IssueDate)
	assert.Equal(t, "F001-00001234", res.Fields.DocumentNumber)
	assert.Equal(t, entity.OriginOCR, res.Origins[entity.FieldTaxID])
}

func TestProcessImageFallsBackToOCR(t *testing.T) {
	rec := &fakeRecognizer{text: "RUC 20123456789\nTOTAL S/ 89.50"}
	e := newTestEngine(rec, nil)

	res, err := e.Process(context.Background(), ingest.NewImageSource("photo", whiteFrame()))
	require.NoError(t, err)

	assert.Equal(t, 1, rec.calls)
	require.Len(t, res.Pages, 1)
	assert.Equal(t, "image-ocr", res.Pages[0].Method)
	assert.Equal(t, "20123456789", res.Fields.TaxID)
	assert.Equal(t, "89.50", res.Fields.Total)
}

func TestProcessEmptyInputYieldsDefaults(t *testing.T) {
	e := newTestEngine(&fakeRecognizer{}, nil)

	res, err := e.Process(context.Background(), ingest.NewTextSource("empty.txt", ""))
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultTaxID, res.Fields.TaxID)
	assert.Equal(t, constants.DefaultDocumentNumber, res.Fields.DocumentNumber)
	assert.Equal(t, constants.DefaultSupplierName, res.Fields.SupplierName)
	assert.Equal(t, constants.DefaultTotal, res.Fields.Total)
	assert.Empty(t, res.Fields.IssueDate)
	assert.Equal(t, constants.DocTypeOther, res.Fields.DocumentType)
	for _, field := range []string{
		entity.FieldTaxID, entity.FieldDocumentNumber, entity.FieldSupplierName,
		entity.FieldTotal, entity.FieldIssueDate, entity.FieldDocumentType,
	} {
		assert.Equal(t, entity.OriginDefault, res.Origins[field], field)
	}
}

func TestProcessQROverridesOCR(t *testing.T) {
	rec := &fakeRecognizer{text: "RUC 20999999992\nF002-00000001\nTOTAL 99.00\nFECHA EMISION 10/01/2024"}
	scan := &fakeScanner{payload: "20100041953|01|F001|123|0|450.00|15/03/2024"}
	e := newTestEngine(rec, scan)

	res, err := e.Process(context.Background(), ingest.NewImageSource("photo", whiteFrame()))
	require.NoError(t, err)

	assert.Equal(t, "20100041953", res.Fields.TaxID)
	assert.Equal(t, "F001-00000123", res.Fields.DocumentNumber)
	assert.Equal(t, "450.00", res.Fields.Total)
	assert.Equal(t, "2024-03-15", res.Fields.IssueDate)
	assert.Equal(t, constants.DocTypeFacturaElectronica, res.Fields.DocumentType)
	for _, field := range []string{
		entity.FieldTaxID, entity.FieldDocumentNumber,
		entity.FieldTotal, entity.FieldIssueDate, entity.FieldDocumentType,
	} {
		assert.Equal(t, entity.OriginQR, res.Origins[field], field)
	}
}

func TestMergeFields(t *testing.T) {
	t.Run("zero qr total never overrides", func(t *testing.T) {
		fields, origins := mergeFields(
			entity.Fields{Total: "45.90"},
			qr.Payload{Total: "0.00"},
		)
		assert.Equal(t, "45.90", fields.Total)
		assert.Equal(t, entity.OriginOCR, origins[entity.FieldTotal])
	})

	t.Run("supplier name only comes from ocr", func(t *testing.T) {
		fields, origins := mergeFields(
			entity.Fields{SupplierName: "COMERCIAL LOS ANDES S.A.C"},
			qr.Payload{TaxID: "20100041953"},
		)
		assert.Equal(t, "COMERCIAL LOS ANDES S.A.C", fields.SupplierName)
		assert.Equal(t, entity.OriginOCR, origins[entity.FieldSupplierName])
	})
}
