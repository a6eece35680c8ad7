package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/barcodegen/internal/formatter"
	"github.com/desertthunder/barcodegen/internal/render"
	"github.com/desertthunder/barcodegen/internal/repositories"
	"github.com/desertthunder/barcodegen/internal/sequence"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/desertthunder/barcodegen/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Stores, the generator and the render pipeline are built on first use so
// commands like setup never open the database twice.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	open       func(path string) error

	stores   *repositories.Stores
	gen      *sequence.Generator
	renderer *render.Renderer
	exporter *formatter.PDFExporter
	pipeline *tasks.Pipeline
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Open       func(path string) error // opens exported documents, defaults to [shared.OpenDocument]
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Open == nil {
		opts.Open = shared.OpenDocument
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		open:       opts.Open,
	}
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, productsCommand, generateCommand, countersCommand,
		historyCommand, decodeCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// generator opens the configured stores and loads every counter.
func (r *Runner) generator(ctx context.Context) (*sequence.Generator, error) {
	if r.gen != nil {
		return r.gen, nil
	}

	format, err := sequence.NewFormat(r.config.Format)
	if err != nil {
		return nil, err
	}

	stores, err := repositories.Open(r.config.Database)
	if err != nil {
		return nil, err
	}

	gen := sequence.New(stores.Counters, sequence.Options{
		Products: sequence.ProductsFromConfig(r.config.Products),
		Format:   format,
		Batches:  stores.Batches,
		Logger:   shared.WithLogger(r.logger, "component", "generator"),
	})
	if err := gen.Load(ctx); err != nil {
		stores.Close()
		return nil, err
	}

	r.logger.Debug("generator ready", "driver", r.config.Database.Driver, "products", len(r.config.Products))

	r.stores = stores
	r.gen = gen
	return gen, nil
}

// renderPipeline builds the renderer, PDF exporter and worker pool from configuration.
func (r *Runner) renderPipeline() (*tasks.Pipeline, error) {
	if r.pipeline != nil {
		return r.pipeline, nil
	}

	renderer, err := render.New(r.config.Render)
	if err != nil {
		return nil, err
	}

	r.renderer = renderer
	r.exporter = formatter.NewPDFExporter(r.config.Export)
	r.pipeline = tasks.NewPipeline(renderer, r.exporter, r.config.Render.Workers)
	return r.pipeline, nil
}

// Close releases the stores opened by [Runner.generator].
func (r *Runner) Close() error {
	if r.stores == nil {
		return nil
	}
	err := r.stores.Close()
	r.stores = nil
	r.gen = nil
	return err
}

// withGenerator runs fn with a loaded generator and closes the stores afterwards.
func (r *Runner) withGenerator(ctx context.Context, fn func(*sequence.Generator) error) (err error) {
	gen, err := r.generator(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("%w: failed to close store: %v", shared.ErrPersistence, cerr))
		}
	}()
	return fn(gen)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
