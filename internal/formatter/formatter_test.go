package formatter

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
	th "github.com/desertthunder/barcodegen/internal/testing"
)

func testBatch() *models.Batch {
	return &models.Batch{
		ID:          "b-1",
		ProductCode: "P001",
		ProductName: "Product 1",
		First:       4,
		Last:        6,
		Codes:       []string{"P001-04", "P001-05", "P001-06"},
		Request:     models.Request{ProductCode: "P001", Quantity: 3},
		CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testBatch())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Product,Number,Code\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "P001,5,P001-05") {
			t.Errorf("CSV missing second row, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testBatch())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Product 1 (P001)") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Numbers**: 4-6") {
			t.Errorf("Markdown missing number range")
		}
		if !strings.Contains(output, "6. `P001-06`") {
			t.Errorf("Markdown missing last code, got: %s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testBatch())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if string(data) != "P001-04\nP001-05\nP001-06\n" {
			t.Errorf("unexpected text export %q", data)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		batch := testBatch()
		data, err := ToMetadataJSON(batch)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}
		if strings.Contains(string(data), "P001-05") {
			t.Errorf("metadata should not include codes")
		}
		if len(batch.Codes) != 3 {
			t.Errorf("metadata export must not modify the batch")
		}
	})
}

func TestFileExports(t *testing.T) {
	dir := t.TempDir()

	t.Run("WriteCSVExport", func(t *testing.T) {
		result, err := WriteCSVExport(testBatch(), filepath.Join(dir, "batch"))
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}
		th.AssertFileExists(t, result.CodesFile)
		th.AssertFileExists(t, result.MetadataFile)

		if !strings.Contains(th.MustReadFile(t, result.MetadataFile), `"product_code": "P001"`) {
			t.Errorf("metadata file missing product code")
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path, err := WriteTextExport(testBatch(), filepath.Join(dir, "codes.txt"))
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if got := th.MustReadFile(t, path); !strings.HasPrefix(got, "P001-04\n") {
			t.Errorf("unexpected contents %q", got)
		}
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		path, err := WriteMarkdownExport(testBatch(), filepath.Join(dir, "batch.md"))
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("unwritable path", func(t *testing.T) {
		_, err := WriteTextExport(testBatch(), filepath.Join(dir, "missing", "codes.txt"))
		if !errors.Is(err, shared.ErrExport) {
			t.Errorf("expected ErrExport, got %v", err)
		}
	})
}

func TestLayout(t *testing.T) {
	a4 := Page{Width: 210, Height: 297, Margin: 10, ItemHeight: 30, Gap: 10, Columns: 1}

	t.Run("single column", func(t *testing.T) {
		placements := Layout(8, a4)
		if len(placements) != 8 {
			t.Fatalf("expected 8 placements, got %d", len(placements))
		}

		first := placements[0]
		if first.Page != 1 || first.X != 10 || first.Y != 10 || first.W != 190 || first.H != 30 {
			t.Errorf("unexpected first placement %+v", first)
		}
		if placements[1].Y != 50 {
			t.Errorf("expected second row at y=50, got %v", placements[1].Y)
		}

		if placements[6].Page != 1 || placements[6].Y != 250 {
			t.Errorf("expected seventh item at the bottom of page 1, got %+v", placements[6])
		}
		if placements[7].Page != 2 || placements[7].Y != 10 {
			t.Errorf("expected eighth item at the top of page 2, got %+v", placements[7])
		}
	})

	t.Run("no item crosses the bottom margin", func(t *testing.T) {
		for i, p := range Layout(40, a4) {
			if p.Y+p.H > a4.Height-a4.Margin {
				t.Errorf("item %d overflows: %+v", i, p)
			}
		}
	})

	t.Run("columns are row-major", func(t *testing.T) {
		page := a4
		page.Columns = 2

		placements := Layout(3, page)
		if placements[0].Y != placements[1].Y {
			t.Errorf("expected first two items on one row")
		}
		if placements[1].X <= placements[0].X {
			t.Errorf("expected second item to the right of the first")
		}
		if placements[2].X != placements[0].X || placements[2].Y != 50 {
			t.Errorf("expected third item to start the next row, got %+v", placements[2])
		}
		if placements[0].W != 90 {
			t.Errorf("expected cell width 90, got %v", placements[0].W)
		}
	})

	t.Run("oversized rows still paginate", func(t *testing.T) {
		page := a4
		page.ItemHeight = 400

		placements := Layout(2, page)
		if placements[0].Page != 1 || placements[1].Page != 2 {
			t.Errorf("expected one item per page, got %+v", placements)
		}
	})
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 2 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

func TestPDFExporter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		e := NewPDFExporter(shared.ExportConfig{})
		if e.Filename() != "barcodes.pdf" {
			t.Errorf("expected barcodes.pdf, got %s", e.Filename())
		}
	})

	t.Run("export", func(t *testing.T) {
		e := NewPDFExporter(shared.DefaultConfig().Export).WithTitle("P001 1-9")

		images := make([]image.Image, 9)
		for i := range images {
			images[i] = solid(120, 50)
		}

		var buf bytes.Buffer
		if err := e.Export(&buf, images); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		out := buf.Bytes()
		if !bytes.HasPrefix(out, []byte("%PDF-")) {
			t.Fatalf("output is not a PDF")
		}
		pages := bytes.Count(out, []byte("/Type /Page")) - bytes.Count(out, []byte("/Type /Pages"))
		if pages != 2 {
			t.Errorf("expected 2 pages for 9 rows, got %d", pages)
		}
	})

	t.Run("nothing to export", func(t *testing.T) {
		err := NewPDFExporter(shared.ExportConfig{}).Export(&bytes.Buffer{}, nil)
		if !errors.Is(err, shared.ErrExport) {
			t.Errorf("expected ErrExport, got %v", err)
		}
	})

	t.Run("write file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.pdf")
		got, err := NewPDFExporter(shared.ExportConfig{}).WriteFile(path, []image.Image{solid(40, 20)})
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}

		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("expected a non-empty file, got %v", err)
		}
	})
}
