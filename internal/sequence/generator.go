package sequence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
)

// MaxQuantity bounds a single batch.
const MaxQuantity = 10000

// Options configures a [Generator].
type Options struct {
	Products []models.Product
	Format   Format
	Batches  models.BatchStore // optional history
	Logger   *log.Logger
	Now      func() time.Time
}

// Generator issues sequential codes per product.
//
// Generate and SetCounter are serialized so the read-compute-write window is
// atomic within one process. Separate processes sharing a store are not
// coordinated.
type Generator struct {
	mu       sync.Mutex
	store    models.CounterStore
	batches  models.BatchStore
	products []models.Product
	index    map[string]int
	format   Format
	logger   *log.Logger
	now      func() time.Time

	current *models.Batch
	request *models.Request
}

// New creates a [Generator] over store. Products keep their configured order.
func New(store models.CounterStore, opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Format.Fields == nil {
		opts.Format = Format{Fields: FullFields, Delimiter: "-", PadWidth: 2}
	}

	products := make([]models.Product, len(opts.Products))
	index := make(map[string]int, len(opts.Products))
	for i, p := range opts.Products {
		products[i] = p
		index[p.Code] = i
	}

	return &Generator{
		store:    store,
		batches:  opts.Batches,
		products: products,
		index:    index,
		format:   opts.Format,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// ProductsFromConfig converts catalog configuration into products with zero counters.
func ProductsFromConfig(cfg []shared.ProductConfig) []models.Product {
	products := make([]models.Product, 0, len(cfg))
	for _, p := range cfg {
		products = append(products, models.Product{Name: p.Name, Code: strings.TrimSpace(p.Code)})
	}
	return products
}

// Load seeds every product's LastNumber from the store.
func (g *Generator) Load(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.products {
		counter, err := g.store.Get(ctx, g.products[i].Code)
		if err != nil {
			return wrapPersistence(err, "failed to load counter for %s", g.products[i].Code)
		}
		g.products[i].LastNumber = counter.LastNumber
	}
	return nil
}

// Products returns a copy of the catalog.
func (g *Generator) Products() []models.Product {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.Product(nil), g.products...)
}

// Product looks up one catalog entry by code.
func (g *Generator) Product(code string) (models.Product, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i, ok := g.index[strings.TrimSpace(code)]
	if !ok {
		return models.Product{}, false
	}
	return g.products[i], true
}

// Format returns the active code format.
func (g *Generator) Format() Format {
	return g.format
}

// Generate produces req.Quantity codes for req.ProductCode and commits the advanced counter.
//
// On success the batch also becomes the generator's current batch. Errors wrap
// [shared.ErrValidation], [shared.ErrProductNotFound] or [shared.ErrPersistence]
// and leave every piece of state as it was.
func (g *Generator) Generate(ctx context.Context, req models.Request) (*models.Batch, error) {
	req.ProductCode = strings.TrimSpace(req.ProductCode)

	if err := g.format.Validate(req); err != nil {
		return nil, err
	}
	if req.Quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity %d exceeds the limit of %d", shared.ErrValidation, req.Quantity, MaxQuantity)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	i, ok := g.index[req.ProductCode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrProductNotFound, req.ProductCode)
	}
	product := g.products[i]

	counter, err := g.store.Get(ctx, product.Code)
	if err != nil {
		return nil, wrapPersistence(err, "failed to read counter for %s", product.Code)
	}

	start := counter.LastNumber
	codes := make([]string, 0, req.Quantity)
	for n := 1; n <= req.Quantity; n++ {
		codes = append(codes, g.format.Code(product, req, start+n))
	}

	next := models.Counter{
		LastNumber:  start + req.Quantity,
		IssuedCount: counter.IssuedCount + req.Quantity,
	}
	if err := g.store.Set(ctx, product.Code, next); err != nil {
		return nil, wrapPersistence(err, "failed to commit counter for %s", product.Code)
	}

	g.products[i].LastNumber = next.LastNumber

	if g.format.Overflows(next.LastNumber) {
		g.logger.Warn("sequence number wider than pad width",
			"product", product.Code, "last_number", next.LastNumber, "pad_width", g.format.PadWidth)
	}

	batch := &models.Batch{
		ID:          shared.GenerateID(),
		ProductCode: product.Code,
		ProductName: product.Name,
		First:       start + 1,
		Last:        next.LastNumber,
		Codes:       codes,
		Request:     req,
		CreatedAt:   g.now().UTC(),
	}

	g.current = batch
	g.request = &req

	g.logger.Info("generated batch",
		"product", product.Code, "first", batch.First, "last", batch.Last, "issued", next.IssuedCount)

	if g.batches != nil {
		if err := g.batches.Record(ctx, batch); err != nil {
			g.logger.Warn("failed to record batch history", "batch", batch.ID, "error", err)
		}
	}

	return batch, nil
}

// Reset clears the current batch and request. Counters are untouched.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = nil
	g.request = nil
}

// Batch returns the current batch and the request that produced it, or nils after [Generator.Reset].
func (g *Generator) Batch() (*models.Batch, *models.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current, g.request
}

// Counter reads the stored counter for a catalog product.
func (g *Generator) Counter(ctx context.Context, code string) (models.Counter, error) {
	if _, ok := g.Product(code); !ok {
		return models.Counter{}, fmt.Errorf("%w: %s", shared.ErrProductNotFound, code)
	}

	counter, err := g.store.Get(ctx, strings.TrimSpace(code))
	if err != nil {
		return models.Counter{}, wrapPersistence(err, "failed to read counter for %s", code)
	}
	return counter, nil
}

// SetCounter raises a product's LastNumber, e.g. after labels were issued by another tool.
//
// Lowering it would reissue numbers and fails with [shared.ErrValidation].
func (g *Generator) SetCounter(ctx context.Context, code string, last int) (models.Counter, error) {
	code = strings.TrimSpace(code)

	g.mu.Lock()
	defer g.mu.Unlock()

	i, ok := g.index[code]
	if !ok {
		return models.Counter{}, fmt.Errorf("%w: %s", shared.ErrProductNotFound, code)
	}

	counter, err := g.store.Get(ctx, code)
	if err != nil {
		return models.Counter{}, wrapPersistence(err, "failed to read counter for %s", code)
	}
	if last < counter.LastNumber {
		return models.Counter{}, fmt.Errorf("%w: last number %d is below the issued %d", shared.ErrValidation, last, counter.LastNumber)
	}

	counter.LastNumber = last
	if err := g.store.Set(ctx, code, counter); err != nil {
		return models.Counter{}, wrapPersistence(err, "failed to write counter for %s", code)
	}
	g.products[i].LastNumber = last

	g.logger.Info("counter raised", "product", code, "last_number", last)
	return counter, nil
}

// wrapPersistence tags store errors with [shared.ErrPersistence] unless they already carry it.
func wrapPersistence(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, shared.ErrPersistence) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrPersistence, msg, err)
}
