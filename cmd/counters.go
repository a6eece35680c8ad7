package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/sequence"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/urfave/cli/v3"
)

// CounterEntry is one row of `counters list`.
type CounterEntry struct {
	Code        string `json:"code"`
	Name        string `json:"name,omitempty"`
	LastNumber  int    `json:"last_number"`
	IssuedCount int    `json:"issued_count"`
	InCatalog   bool   `json:"in_catalog"`
}

// CountersList prints the stored counter for every catalog product.
//
// Stores that can enumerate their keys also report counters for codes no
// longer in the catalog, so retired products are not silently forgotten.
func (r *Runner) CountersList(ctx context.Context, cmd *cli.Command) error {
	return r.withGenerator(ctx, func(gen *sequence.Generator) error {
		var entries []CounterEntry
		seen := map[string]bool{}

		for _, p := range gen.Products() {
			counter, err := gen.Counter(ctx, p.Code)
			if err != nil {
				return err
			}
			seen[p.Code] = true
			entries = append(entries, CounterEntry{
				Code:        p.Code,
				Name:        p.Name,
				LastNumber:  counter.LastNumber,
				IssuedCount: counter.IssuedCount,
				InCatalog:   true,
			})
		}

		stored, err := r.stores.ListCounters(ctx)
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			r.logger.Debug("counter store cannot enumerate keys", "driver", r.config.Database.Driver)
		case err != nil:
			return err
		default:
			entries = append(entries, retiredEntries(stored, seen)...)
		}

		if cmd.Bool("json") {
			return r.writeJSON(entries, true)
		}

		r.writePlainHeader(fmt.Sprintf("Counters (%s)", r.config.Database.Driver))
		for _, e := range entries {
			note := ""
			if !e.InCatalog {
				note = " (not in catalog)"
			}
			r.writePlain("%-10s last=%-6d issued=%-6d%s\n", e.Code, e.LastNumber, e.IssuedCount, note)
		}
		return nil
	})
}

// retiredEntries returns stored counters whose codes are not in seen, sorted by code.
func retiredEntries(stored map[string]models.Counter, seen map[string]bool) []CounterEntry {
	codes := make([]string, 0, len(stored))
	for code := range stored {
		if !seen[code] {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)

	entries := make([]CounterEntry, 0, len(codes))
	for _, code := range codes {
		counter := stored[code]
		entries = append(entries, CounterEntry{
			Code:        code,
			LastNumber:  counter.LastNumber,
			IssuedCount: counter.IssuedCount,
		})
	}
	return entries
}

// CountersSet raises a product's last issued number.
func (r *Runner) CountersSet(ctx context.Context, cmd *cli.Command) error {
	code := strings.TrimSpace(cmd.StringArg("product"))
	if code == "" {
		return fmt.Errorf("%w: product", shared.ErrMissingArgument)
	}

	raw := strings.TrimSpace(cmd.StringArg("last"))
	if raw == "" {
		return fmt.Errorf("%w: last", shared.ErrMissingArgument)
	}
	last, err := strconv.Atoi(raw)
	if err != nil || last < 0 {
		return fmt.Errorf("%w: last must be a non-negative integer, got %q", shared.ErrInvalidArgument, raw)
	}

	return r.withGenerator(ctx, func(gen *sequence.Generator) error {
		counter, err := gen.SetCounter(ctx, code, last)
		if err != nil {
			return err
		}
		return r.writePlain("✓ %s last=%d issued=%d\n", code, counter.LastNumber, counter.IssuedCount)
	})
}
