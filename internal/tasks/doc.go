// Package tasks runs the work that follows a committed batch: rendering every
// code to an image, assembling the PDF document and writing bulk exports.
//
// # Core Operations
//
// [Pipeline] exposes three operations:
//
//  1. [Pipeline.Render] : Render every code of a batch
//     - Fans codes out to a bounded worker pool
//     - Keeps results in batch order
//     - Records per-code failures without aborting the batch
//
//  2. [Pipeline.Export] : Write rendered images as one PDF document
//     - Skips codes that failed to render
//     - Fails with [shared.ErrExport] when nothing rendered
//
//  3. [Pipeline.BulkExport] : Write many batches to a directory
//     - One worker per batch up to the configured limit
//     - Formats: pdf, csv, markdown, txt, json
//     - Writes export_manifest.json summarizing the run
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate]. Sends use
// select with default so a slow or absent reader never stalls rendering.
//
// Rendering happens after the counter write. A render failure never rolls a
// counter back; those numbers stay issued.
package tasks
