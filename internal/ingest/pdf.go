package ingest

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/vcorp-pe/boleta-engine/internal/common"
	"github.com/vcorp-pe/boleta-engine/internal/entity"
)

// resolvePDF opens the document once and emits one RawPage per page:
// whatever native text the PDF carries plus a rendered frame, so the
// pipeline can fall back to OCR and always has an image for QR scanning.
func (r *Resolver) resolvePDF(data []byte) ([]entity.RawPage, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, common.WrapError(err, "open pdf")
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			r.logger.Warn("ingest.pdf.close", "error", cerr)
		}
	}()

	n := doc.NumPage()
	if r.cfg.MaxPages > 0 && n > r.cfg.MaxPages {
		r.logger.Warn("ingest.pdf.truncated", "pages", n, "max_pages", r.cfg.MaxPages)
		n = r.cfg.MaxPages
	}

	pages := make([]entity.RawPage, 0, n)
	for i := 0; i < n; i++ {
		page := entity.RawPage{Index: i}

		if txt, terr := doc.Text(i); terr != nil {
			r.logger.Debug("ingest.pdf.text.skip", "page", i, "error", terr)
		} else {
			page.Text = strings.TrimSpace(txt)
		}

		if img, ierr := doc.ImageDPI(i, float64(r.cfg.DPI)); ierr != nil {
			r.logger.Warn("ingest.pdf.render.skip", "page", i, "error", ierr)
		} else {
			page.Image = img
		}

		if page.Text == "" && page.Image == nil {
			return nil, fmt.Errorf("pdf page %d: no text and no renderable image", i)
		}
		pages = append(pages, page)
	}
	return pages, nil
}
