package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/barcodegen/internal/formatter"
	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
)

// BulkExportOpts contains configuration for bulk batch exports.
type BulkExportOpts struct {
	Format     string // Export format: pdf, csv, markdown, txt, json
	OutputDir  string // Base output directory (default: barcodes_export_{epoch})
	NumWorkers int    // Concurrent workers (default: 4)
}

// BatchExportResult is the outcome for one batch.
type BatchExportResult struct {
	BatchID     string   `json:"batch_id"`
	ProductCode string   `json:"product_code"`
	Name        string   `json:"name"`
	Success     bool     `json:"success"`
	Files       []string `json:"files,omitempty"`
	Error       error    `json:"-"`
	ErrorText   string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	Format            string              `json:"format"`
	TotalBatches      int                 `json:"total_batches"`
	SuccessfulExports int                 `json:"successful_exports"`
	FailedExports     int                 `json:"failed_exports"`
	OutputDirectory   string              `json:"output_directory"`
	ManifestPath      string              `json:"-"`
	Results           []BatchExportResult `json:"results"`
}

// BulkExport writes every batch to opts.OutputDir concurrently and records a manifest.
//
// Failed batches are reported in the result and do not stop the others.
func (p *Pipeline) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, batches []*models.Batch, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("barcodes_export_%d", time.Now().Unix())
	}
	if opts.Format == "" {
		opts.Format = "pdf"
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}

	switch opts.Format {
	case "pdf", "csv", "markdown", "txt", "json":
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create output directory: %v", shared.ErrExport, err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		TotalBatches:    len(batches),
		OutputDirectory: opts.OutputDir,
		Results:         make([]BatchExportResult, 0, len(batches)),
	}

	jobs := make(chan *models.Batch, len(batches))
	results := make(chan BatchExportResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go p.exportWorker(ctx, &wg, jobs, results, opts)
	}

	for _, b := range batches {
		jobs <- b
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.SuccessfulExports++
			p.sendProgress(prog, exportCompletedUpdate(completed, len(batches), res.Name, len(res.Files)))
		} else {
			result.FailedExports++
			res.ErrorText = res.Error.Error()
			p.sendProgress(prog, exportFailedUpdate(completed, len(batches), res.Name, res.Error))
		}
		result.Results = append(result.Results, res)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func (p *Pipeline) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan *models.Batch, results chan<- BatchExportResult, opts BulkExportOpts) {
	defer wg.Done()

	for batch := range jobs {
		select {
		case <-ctx.Done():
			results <- BatchExportResult{BatchID: batch.ID, ProductCode: batch.ProductCode, Name: batchName(batch), Error: ctx.Err()}
			continue
		default:
		}

		results <- p.exportSingleBatch(ctx, batch, opts)
	}
}

// exportSingleBatch writes one batch in the requested format.
func (p *Pipeline) exportSingleBatch(ctx context.Context, batch *models.Batch, opts BulkExportOpts) BatchExportResult {
	name := batchName(batch)
	result := BatchExportResult{
		BatchID:     batch.ID,
		ProductCode: batch.ProductCode,
		Name:        name,
		Files:       []string{},
	}
	base := filepath.Join(opts.OutputDir, name)

	switch opts.Format {
	case "csv":
		csvRes, err := formatter.WriteCSVExport(batch, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.CodesFile, csvRes.MetadataFile}

	case "markdown":
		path, err := formatter.WriteMarkdownExport(batch, base+".md")
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	case "txt":
		path, err := formatter.WriteTextExport(batch, base+"_codes.txt")
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	case "json":
		data, err := shared.MarshalJSON(batch, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(base+".json", data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{base + ".json"}

	default:
		doc, _, err := p.RenderDocument(ctx, nil, batch)
		if err != nil {
			result.Error = fmt.Errorf("PDF export failed: %w", err)
			return result
		}
		if err := os.WriteFile(base+".pdf", doc, 0644); err != nil {
			result.Error = fmt.Errorf("PDF write failed: %w", err)
			return result
		}
		result.Files = []string{base + ".pdf"}
	}

	result.Success = true
	return result
}

func batchName(b *models.Batch) string {
	return fmt.Sprintf("%s_%d-%d", b.ProductCode, b.First, b.Last)
}
