package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/barcodegen/internal/sequence"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/desertthunder/barcodegen/internal/tasks"
	"github.com/urfave/cli/v3"
)

// History lists recorded batches, newest first, and can re-export them in bulk.
//
// Re-exporting reuses the recorded codes and never touches counters.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	return r.withGenerator(ctx, func(gen *sequence.Generator) error {
		if r.stores.Batches == nil {
			return fmt.Errorf("%w: batch history requires the sqlite driver (configured: %s)",
				shared.ErrNotImplemented, r.config.Database.Driver)
		}

		batches, err := r.stores.Batches.List(ctx, cmd.String("product"), int(cmd.Int("limit")))
		if err != nil {
			return err
		}

		dir := cmd.String("export")
		if dir == "" {
			if cmd.Bool("json") {
				return r.writeJSON(batches, true)
			}

			r.writePlainHeader(fmt.Sprintf("Batches (%d)", len(batches)))
			for _, b := range batches {
				r.writePlain("%s  %-8s %s-%s  %4d codes  %s\n",
					b.CreatedAt.Local().Format("2006-01-02 15:04"), b.ProductCode,
					gen.Format().Pad(b.First), gen.Format().Pad(b.Last), b.Len(), b.ID)
			}
			return nil
		}

		if len(batches) == 0 {
			return r.writePlain("no batches to export\n")
		}

		pipeline, err := r.renderPipeline()
		if err != nil {
			return err
		}

		progress := make(chan tasks.ProgressUpdate, len(batches))
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progress {
				r.logger.Debug("bulk export", "step", update.Step, "total", update.Total, "message", update.Message)
			}
		}()

		result, err := pipeline.BulkExport(ctx, progress, batches, tasks.BulkExportOpts{
			Format:     cmd.String("format"),
			OutputDir:  dir,
			NumWorkers: r.config.Render.Workers,
		})
		close(progress)
		<-done
		if err != nil {
			return err
		}

		for _, res := range result.Results {
			if !res.Success {
				r.logger.Error("batch export failed", "batch", res.Name, "error", res.Error)
			}
		}

		if cmd.Bool("json") {
			return r.writeJSON(result, true)
		}
		r.writePlain("✓ exported %d/%d batches to %s\n", result.SuccessfulExports, result.TotalBatches, result.OutputDirectory)
		r.writePlain("manifest: %s\n", result.ManifestPath)
		return nil
	})
}
