package tasks

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
)

// Renderer draws a single code. Implemented by render.Renderer.
type Renderer interface {
	Render(code string) (image.Image, error)
}

// Exporter writes images as one document. Implemented by formatter.PDFExporter.
type Exporter interface {
	Export(w io.Writer, images []image.Image) error
}

// RenderResult is the outcome for one code.
type RenderResult struct {
	Index int         // Position within the batch
	Code  string      // Code that was rendered
	Image image.Image // Rendered image (nil on failure)
	Error error       // Error wrapping shared.ErrRender on failure
}

// RenderBatchResult contains the outcome of rendering a whole batch.
type RenderBatchResult struct {
	Batch    *models.Batch  // Batch that was rendered
	Items    []RenderResult // Results in batch order
	Rendered int            // Number of codes rendered
	Failed   int            // Number of codes that failed
}

// Images returns successfully rendered images in batch order.
func (r *RenderBatchResult) Images() []image.Image {
	images := make([]image.Image, 0, r.Rendered)
	for _, item := range r.Items {
		if item.Error == nil && item.Image != nil {
			images = append(images, item.Image)
		}
	}
	return images
}

// Errors returns the failures in batch order.
func (r *RenderBatchResult) Errors() []RenderResult {
	var failed []RenderResult
	for _, item := range r.Items {
		if item.Error != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

// Pipeline renders and exports committed batches.
type Pipeline struct {
	renderer Renderer
	exporter Exporter
	workers  int
}

// NewPipeline creates a Pipeline. workers is clamped to [1, 16].
func NewPipeline(renderer Renderer, exporter Exporter, workers int) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	if workers > 16 {
		workers = 16
	}
	return &Pipeline{renderer: renderer, exporter: exporter, workers: workers}
}

// sendProgress sends a progress update through the channel without blocking.
func (p *Pipeline) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

type renderJob struct {
	index int
	code  string
}

// Render renders every code in batch on the worker pool.
//
// Per-code failures are recorded in the result; the returned error is only
// set when ctx is cancelled before every code was attempted.
func (p *Pipeline) Render(ctx context.Context, progress chan<- ProgressUpdate, batch *models.Batch) (*RenderBatchResult, error) {
	if batch.Len() == 0 {
		return nil, fmt.Errorf("%w: empty batch", shared.ErrRender)
	}

	total := batch.Len()
	result := &RenderBatchResult{Batch: batch, Items: make([]RenderResult, total)}

	jobs := make(chan renderJob, total)
	results := make(chan RenderResult, total)

	var wg sync.WaitGroup
	for i := 0; i < min(p.workers, total); i++ {
		wg.Add(1)
		go p.renderWorker(ctx, &wg, jobs, results)
	}

	p.sendProgress(progress, renderingUpdate(total))
	for i, code := range batch.Codes {
		jobs <- renderJob{index: i, code: code}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Items[res.Index] = res
		if res.Error != nil {
			result.Failed++
		} else {
			result.Rendered++
		}
		p.sendProgress(progress, renderedUpdate(completed, total, res))
	}

	if completed < total {
		return result, fmt.Errorf("rendering cancelled after %d of %d codes: %w", completed, total, ctx.Err())
	}
	return result, nil
}

func (p *Pipeline) renderWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan renderJob, results chan<- RenderResult) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		img, err := p.renderer.Render(job.code)
		if err != nil {
			results <- RenderResult{Index: job.index, Code: job.code, Error: err}
			continue
		}
		results <- RenderResult{Index: job.index, Code: job.code, Image: img}
	}
}

// Export writes the rendered images of result as one document.
func (p *Pipeline) Export(ctx context.Context, progress chan<- ProgressUpdate, w io.Writer, result *RenderBatchResult) error {
	if p.exporter == nil {
		return fmt.Errorf("%w: no exporter configured", shared.ErrNotImplemented)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	images := result.Images()
	if len(images) == 0 {
		return fmt.Errorf("%w: no rendered barcodes to export", shared.ErrExport)
	}

	p.sendProgress(progress, documentUpdate(1, 2, len(images)))
	if err := p.exporter.Export(w, images); err != nil {
		return err
	}
	p.sendProgress(progress, documentUpdate(2, 2, len(images)))
	return nil
}

// RenderDocument renders batch and exports it in one call, returning the document bytes.
func (p *Pipeline) RenderDocument(ctx context.Context, progress chan<- ProgressUpdate, batch *models.Batch) ([]byte, *RenderBatchResult, error) {
	result, err := p.Render(ctx, progress, batch)
	if err != nil {
		return nil, result, err
	}

	var buf bytes.Buffer
	if err := p.Export(ctx, progress, &buf, result); err != nil {
		return nil, result, err
	}
	return buf.Bytes(), result, nil
}
