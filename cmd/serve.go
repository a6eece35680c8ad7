package main

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/desertthunder/barcodegen/internal/sequence"
	"github.com/desertthunder/barcodegen/internal/server"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/desertthunder/barcodegen/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the browser form until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := int(cmd.Int("port")); port != 0 {
		r.config.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return r.withGenerator(ctx, func(gen *sequence.Generator) error {
		router, err := r.router(gen)
		if err != nil {
			return err
		}

		logger := shared.WithLogger(r.logger, "component", "server")
		logger.Debug("routes", "patterns", router.Patterns())

		srv := server.New(r.config.ListenAddr(), router, logger)
		return srv.ListenAndServe(ctx)
	})
}

// router wires the web form behind recovery and request logging.
//
// Only POSTs (generate, reset) are rate limited; a rendered batch page loads one
// /barcode.png per code and must not be throttled.
func (r *Runner) router(gen *sequence.Generator) (*server.BasicRouter, error) {
	pipeline, err := r.renderPipeline()
	if err != nil {
		return nil, err
	}

	handler, err := web.New(web.Options{
		Generator: gen,
		Pipeline:  pipeline,
		Renderer:  r.renderer,
		Company:   r.config.Company.Name,
		Filename:  r.config.Export.Filename,
		Logger:    shared.WithLogger(r.logger, "component", "web"),
	})
	if err != nil {
		return nil, err
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	if limit := r.config.Server.RateLimit; limit > 0 {
		limiter := server.RateLimit(limit, max(1, int(math.Ceil(limit))))
		router.Use(server.ForMethods(limiter, http.MethodPost))
	}

	router.HandleFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	router.Handler(handler)
	return router, nil
}
