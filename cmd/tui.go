package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/barcodegen/internal/sequence"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/desertthunder/barcodegen/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for generating and printing batches.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/barcodegen-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	pipeline, err := r.renderPipeline()
	if err != nil {
		return err
	}

	return r.withGenerator(ctx, func(gen *sequence.Generator) error {
		model := ui.NewModel(ctx, ui.Options{
			Generator:  gen,
			Pipeline:   pipeline,
			ExportPath: r.config.Export.Filename,
			Company:    r.config.Company.Name,
			Open:       r.open,
			Logger:     fileLogger,
		})
		p := tea.NewProgram(model, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	})
}
