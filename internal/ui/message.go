package ui

import (
	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/tasks"
)

// generatedMsg carries the outcome of [sequence.Generator.Generate].
type generatedMsg struct {
	batch *models.Batch
	err   error
}

// progressUpdateMsg wraps a [tasks.ProgressUpdate] read from the export channel.
type progressUpdateMsg tasks.ProgressUpdate

// exportCompleteMsg carries the outcome of a PDF export, optionally opened for printing.
type exportCompleteMsg struct {
	path   string
	failed int
	print  bool
	err    error
}
