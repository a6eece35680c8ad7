package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/desertthunder/barcodegen/internal/formatter"
	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/sequence"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/urfave/cli/v3"
)

var exportFormats = []string{"pdf", "csv", "markdown", "txt", "json", "none"}

// Products lists the catalog with each product's last issued number.
func (r *Runner) Products(ctx context.Context, cmd *cli.Command) error {
	return r.withGenerator(ctx, func(gen *sequence.Generator) error {
		products := gen.Products()
		if cmd.Bool("json") {
			return r.writeJSON(products, true)
		}

		r.writePlainHeader(fmt.Sprintf("Products (%d)", len(products)))
		for _, p := range products {
			r.writePlain("%-10s %-30s last=%s\n", p.Code, p.Name, gen.Format().Pad(p.LastNumber))
		}
		return nil
	})
}

// Generate issues a batch for one product and exports it.
//
// The export format is checked before any number is consumed. Once the
// counter is committed, render or export failures are reported but the batch
// stays issued.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	exportFormat := strings.ToLower(cmd.String("format"))
	if !slices.Contains(exportFormats, exportFormat) {
		return fmt.Errorf("%w: unknown export format %q (want one of %s)",
			shared.ErrInvalidArgument, exportFormat, strings.Join(exportFormats, ", "))
	}
	if cmd.Bool("print") && exportFormat != "pdf" {
		return fmt.Errorf("%w: --print requires --format pdf", shared.ErrInvalidArgument)
	}

	company := cmd.String("company")
	if company == "" {
		company = r.config.Company.Name
	}

	req := models.Request{
		ProductCode: cmd.String("product"),
		Quantity:    int(cmd.Int("quantity")),
		Company:     company,
		Count:       cmd.String("count"),
		Lot:         cmd.String("lot"),
		Date:        cmd.String("date"),
	}

	return r.withGenerator(ctx, func(gen *sequence.Generator) error {
		batch, err := gen.Generate(ctx, req)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			if err := r.writeJSON(batch, true); err != nil {
				return err
			}
		} else {
			r.writePlainHeader(fmt.Sprintf("%s %s: %d codes (%d-%d)",
				batch.ProductCode, batch.ProductName, batch.Len(), batch.First, batch.Last))
			for _, code := range batch.Codes {
				r.writePlain("%s\n", code)
			}
		}

		files, err := r.exportBatch(ctx, batch, exportFormat, cmd.String("output"))
		if err != nil {
			return fmt.Errorf("batch %d-%d for %s was issued but not exported: %w",
				batch.First, batch.Last, batch.ProductCode, err)
		}
		for _, f := range files {
			r.logger.Info("exported", "format", exportFormat, "file", f)
			if !cmd.Bool("json") {
				r.writePlain("✓ wrote %s\n", f)
			}
		}

		if cmd.Bool("print") && len(files) > 0 {
			if err := r.open(files[0]); err != nil {
				return fmt.Errorf("failed to open %s for printing: %w", files[0], err)
			}
		}
		return nil
	})
}

// exportBatch writes batch in exportFormat and returns the files written.
func (r *Runner) exportBatch(ctx context.Context, batch *models.Batch, exportFormat, output string) ([]string, error) {
	switch exportFormat {
	case "none":
		return nil, nil
	case "csv":
		res, err := formatter.WriteCSVExport(batch, output)
		if err != nil {
			return nil, err
		}
		return []string{res.CodesFile, res.MetadataFile}, nil
	case "markdown":
		path, err := formatter.WriteMarkdownExport(batch, output)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case "txt":
		path, err := formatter.WriteTextExport(batch, output)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case "json":
		if output == "" {
			output = fmt.Sprintf("%s_%d-%d.json", batch.ProductCode, batch.First, batch.Last)
		}
		data, err := shared.MarshalJSON(batch, true)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return nil, fmt.Errorf("%w: failed to write %s: %v", shared.ErrExport, output, err)
		}
		return []string{output}, nil
	default:
		path, err := r.exportPDF(ctx, batch, output)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
}

// exportPDF renders every code and writes one PDF. Codes that fail to render are logged and skipped.
func (r *Runner) exportPDF(ctx context.Context, batch *models.Batch, output string) (string, error) {
	pipeline, err := r.renderPipeline()
	if err != nil {
		return "", err
	}

	doc, result, err := pipeline.RenderDocument(ctx, nil, batch)
	if result != nil {
		for _, failed := range result.Errors() {
			r.logger.Warn("barcode not rendered", "code", failed.Code, "error", failed.Error)
		}
	}
	if err != nil {
		return "", err
	}

	if output == "" {
		output = r.exporter.Filename()
	}
	if err := os.WriteFile(output, doc, 0644); err != nil {
		return "", fmt.Errorf("%w: failed to write %s: %v", shared.ErrExport, output, err)
	}
	return output, nil
}

// Decode splits a code into its fields using the configured format.
func (r *Runner) Decode(ctx context.Context, cmd *cli.Command) error {
	code := strings.TrimSpace(cmd.StringArg("code"))
	if code == "" {
		return fmt.Errorf("%w: code", shared.ErrMissingArgument)
	}

	format, err := sequence.NewFormat(r.config.Format)
	if err != nil {
		return err
	}

	decoded, err := format.Parse(code)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(decoded, true)
	}

	for _, field := range format.Fields {
		r.writePlain("%-10s %s\n", field, decoded.Fields[field])
	}
	return nil
}
