package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	RenderCodes Phase = iota
	ExportDocument
	ExportBatch
)

func (p Phase) String() string {
	switch p {
	case RenderCodes:
		return "render_codes"
	case ExportDocument:
		return "export_document"
	case ExportBatch:
		return "export_batch"
	default:
		return ""
	}
}

func renderingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderCodes,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Rendering %d barcodes...", total),
	}
}

func renderedUpdate(step, total int, item RenderResult) ProgressUpdate {
	if item.Error != nil {
		return ProgressUpdate{
			Phase:   RenderCodes,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, item.Code, item.Error),
			Data:    item,
		}
	}
	return ProgressUpdate{
		Phase:   RenderCodes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, item.Code),
		Data:    item,
	}
}

func documentUpdate(step, total, images int) ProgressUpdate {
	msg := fmt.Sprintf("Writing PDF with %d barcodes...", images)
	if step == total {
		msg = fmt.Sprintf("PDF written (%d barcodes)", images)
	}
	return ProgressUpdate{
		Phase:   ExportDocument,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
