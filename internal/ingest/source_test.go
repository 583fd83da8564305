package ingest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcorp-pe/boleta-engine/constants"
)

func TestResolveTextSource(t *testing.T) {
	r := NewResolver(Config{}, nil)

	pages, format, err := r.Resolve(NewTextSource("voucher.txt", "RUC 20123456789"))
	require.NoError(t, err)
	assert.Equal(t, constants.TEXT, format)
	require.Len(t, pages, 1)
	assert.Equal(t, "RUC 20123456789", pages[0].Text)
	assert.Nil(t, pages[0].Image)
}

func TestResolveImageSource(t *testing.T) {
	r := NewResolver(Config{}, nil)
	img := image.NewGray(image.Rect(0, 0, 4, 4))

	pages, format, err := r.Resolve(NewImageSource("photo", img))
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, format)
	require.Len(t, pages, 1)
	assert.NotNil(t, pages[0].Image)

	_, _, err = r.Resolve(Source{Kind: KindImage})
	assert.Error(t, err)
}

func TestResolveEncodedPNG(t *testing.T) {
	r := NewResolver(Config{}, nil)

	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	pages, format, err := r.Resolve(NewBytesSource("scan.png", buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, format)
	require.Len(t, pages, 1)
	assert.Equal(t, 6, pages[0].Image.Bounds().Dx())
}

func TestResolveRejectsGarbage(t *testing.T) {
	r := NewResolver(Config{}, nil)

	_, _, err := r.Resolve(NewBytesSource("junk.bin", []byte("not a document")))
	assert.Error(t, err)

	_, _, err = r.Resolve(NewBytesSource("empty", nil))
	assert.Error(t, err)
}

func TestResolveRejectsCorruptPDF(t *testing.T) {
	r := NewResolver(Config{}, nil)

	_, _, err := r.Resolve(NewBytesSource("broken.pdf", []byte("%PDF-1.4 truncated")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open pdf")
}

func TestFormatSniffing(t *testing.T) {
	assert.True(t, constants.IsPDFData([]byte("%PDF-1.7 rest")))
	assert.False(t, constants.IsPDFData([]byte("PDF%")))

	heicHeader := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
	heicHeader = append(heicHeader, make([]byte, 8)...)
	assert.True(t, constants.IsHEICData(heicHeader))
	assert.False(t, constants.IsHEICData([]byte("short")))
}
