package formatter

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/barcodegen/internal/render"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/go-pdf/fpdf"
)

// Page describes the printable area in millimetres.
type Page struct {
	Width      float64
	Height     float64
	Margin     float64
	ItemHeight float64
	Gap        float64
	Columns    int
}

// Placement positions one image on a page. Pages are numbered from 1.
type Placement struct {
	Page int
	X, Y float64
	W, H float64
}

// Layout places n items row-major, starting a new page when the next row
// would cross the bottom margin. Every item gets a placement even if a
// single row is taller than the page.
func Layout(n int, page Page) []Placement {
	cols := max(page.Columns, 1)
	cellW := (page.Width - 2*page.Margin - float64(cols-1)*page.Gap) / float64(cols)

	placements := make([]Placement, 0, n)
	pageNum, y := 1, page.Margin
	for i := 0; i < n; i++ {
		col := i % cols
		if col == 0 && i > 0 {
			y += page.ItemHeight + page.Gap
		}
		if col == 0 && y > page.Margin && y+page.ItemHeight > page.Height-page.Margin {
			pageNum++
			y = page.Margin
		}

		placements = append(placements, Placement{
			Page: pageNum,
			X:    page.Margin + float64(col)*(cellW+page.Gap),
			Y:    y,
			W:    cellW,
			H:    page.ItemHeight,
		})
	}
	return placements
}

// PDFExporter writes rendered barcodes into a paginated PDF document.
type PDFExporter struct {
	cfg     shared.ExportConfig
	title   string
	created time.Time
}

// NewPDFExporter creates a [PDFExporter]. Zero values in cfg fall back to A4 portrait with 10mm spacing.
func NewPDFExporter(cfg shared.ExportConfig) *PDFExporter {
	if cfg.PageSize == "" {
		cfg.PageSize = "A4"
	}
	if cfg.Orientation == "" {
		cfg.Orientation = "P"
	}
	if cfg.Margin <= 0 {
		cfg.Margin = 10
	}
	if cfg.ItemHeight <= 0 {
		cfg.ItemHeight = 30
	}
	if cfg.Gap < 0 {
		cfg.Gap = 0
	}
	if cfg.Columns <= 0 {
		cfg.Columns = 1
	}
	if cfg.Filename == "" {
		cfg.Filename = "barcodes.pdf"
	}
	return &PDFExporter{cfg: cfg, title: "Barcodes", created: time.Now()}
}

// WithTitle sets the document title metadata.
func (e *PDFExporter) WithTitle(title string) *PDFExporter {
	e.title = title
	return e
}

// Filename returns the configured output name.
func (e *PDFExporter) Filename() string {
	return e.cfg.Filename
}

// Export writes one document containing images in order. Errors wrap [shared.ErrExport].
func (e *PDFExporter) Export(w io.Writer, images []image.Image) error {
	if len(images) == 0 {
		return fmt.Errorf("%w: no barcodes to export", shared.ErrExport)
	}

	pdf := fpdf.New(e.cfg.Orientation, "mm", e.cfg.PageSize, "")
	pdf.SetTitle(e.title, true)
	pdf.SetCreator("barcodegen", true)
	pdf.SetCreationDate(e.created)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(e.cfg.Margin, e.cfg.Margin, e.cfg.Margin)

	width, height := pdf.GetPageSize()
	placements := Layout(len(images), Page{
		Width:      width,
		Height:     height,
		Margin:     e.cfg.Margin,
		ItemHeight: e.cfg.ItemHeight,
		Gap:        e.cfg.Gap,
		Columns:    e.cfg.Columns,
	})

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	page := 0
	for i, img := range images {
		p := placements[i]
		for page < p.Page {
			pdf.AddPage()
			page++
		}

		var buf bytes.Buffer
		if err := render.EncodePNG(&buf, img); err != nil {
			return fmt.Errorf("%w: barcode %d: %v", shared.ErrExport, i+1, err)
		}

		name := "barcode-" + strconv.Itoa(i)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, p.X, p.Y, p.W, p.H, false, opts, 0, "")

		if pdf.Err() {
			return fmt.Errorf("%w: %v", shared.ErrExport, pdf.Error())
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrExport, err)
	}
	return nil
}

// WriteFile exports images to path, defaulting to the configured filename.
func (e *PDFExporter) WriteFile(path string, images []image.Image) (string, error) {
	if path == "" {
		path = e.cfg.Filename
	}

	var buf bytes.Buffer
	if err := e.Export(&buf, images); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("%w: failed to write %s: %v", shared.ErrExport, path, err)
	}
	return path, nil
}
