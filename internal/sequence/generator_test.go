package sequence

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/repositories"
	"github.com/desertthunder/barcodegen/internal/shared"
	tu "github.com/desertthunder/barcodegen/internal/testing"
)

var catalog = []models.Product{
	{Name: "Product 1", Code: "P001"},
	{Name: "Product 2", Code: "P002"},
	{Name: "Product 3", Code: "P003"},
}

var minimal = Format{Fields: MinimalFields, Delimiter: "-", PadWidth: 2}

func fullRequest(code string, quantity int) models.Request {
	return models.Request{
		ProductCode: code,
		Quantity:    quantity,
		Company:     "Abc Company",
		Count:       "10",
		Lot:         "L5",
		Date:        "2024-01-01",
	}
}

// stores returns every counter store implementation under a fresh state.
func stores(t *testing.T) map[string]models.CounterStore {
	t.Helper()

	sqlite, err := repositories.Open(shared.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	kv, err := repositories.OpenKVCounterStore(filepath.Join(t.TempDir(), "counters"))
	if err != nil {
		t.Fatalf("failed to open pebble store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	return map[string]models.CounterStore{
		"memory": repositories.NewMemoryCounterStore(),
		"sqlite": sqlite.Counters,
		"pebble": kv,
	}
}

func TestGenerator(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			gen := New(store, Options{Products: catalog, Format: minimal})

			t.Run("first batch starts at one", func(t *testing.T) {
				batch, err := gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 3})
				if err != nil {
					t.Fatalf("generate failed: %v", err)
				}

				want := []string{"P001-01", "P001-02", "P001-03"}
				if strings.Join(batch.Codes, ",") != strings.Join(want, ",") {
					t.Errorf("expected %v, got %v", want, batch.Codes)
				}
				if batch.First != 1 || batch.Last != 3 {
					t.Errorf("expected range 1..3, got %d..%d", batch.First, batch.Last)
				}

				counter, err := store.Get(ctx, "P001")
				if err != nil {
					t.Fatalf("get failed: %v", err)
				}
				if counter.LastNumber != 3 || counter.IssuedCount != 3 {
					t.Errorf("expected counter 3/3, got %+v", counter)
				}
			})

			t.Run("second batch continues", func(t *testing.T) {
				batch, err := gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 2})
				if err != nil {
					t.Fatalf("generate failed: %v", err)
				}

				if batch.Codes[0] != "P001-04" || batch.Codes[1] != "P001-05" {
					t.Errorf("expected P001-04, P001-05, got %v", batch.Codes)
				}

				counter, _ := store.Get(ctx, "P001")
				if counter.LastNumber != 5 || counter.IssuedCount != 5 {
					t.Errorf("expected counter 5/5, got %+v", counter)
				}
			})

			t.Run("products are independent", func(t *testing.T) {
				batch, err := gen.Generate(ctx, models.Request{ProductCode: "P003", Quantity: 1})
				if err != nil {
					t.Fatalf("generate failed: %v", err)
				}
				if batch.Codes[0] != "P003-01" {
					t.Errorf("expected P003-01, got %s", batch.Codes[0])
				}
			})

			t.Run("a new generator resumes from the store", func(t *testing.T) {
				reloaded := New(store, Options{Products: catalog, Format: minimal})
				if err := reloaded.Load(ctx); err != nil {
					t.Fatalf("load failed: %v", err)
				}

				p, _ := reloaded.Product("P001")
				if p.LastNumber != 5 {
					t.Errorf("expected loaded LastNumber 5, got %d", p.LastNumber)
				}

				batch, err := reloaded.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 1})
				if err != nil {
					t.Fatalf("generate failed: %v", err)
				}
				if batch.Codes[0] != "P001-06" {
					t.Errorf("expected P001-06, got %s", batch.Codes[0])
				}
			})
		})
	}
}

func TestGenerateQuantityProperty(t *testing.T) {
	ctx := context.Background()
	store := tu.NewStubCounterStore(nil)
	gen := New(store, Options{Products: catalog, Format: minimal})

	expectedNext := 1
	for _, k := range []int{1, 4, 2, 7, 1} {
		before := store.Snapshot("P002")

		batch, err := gen.Generate(ctx, models.Request{ProductCode: "P002", Quantity: k})
		if err != nil {
			t.Fatalf("generate(%d) failed: %v", k, err)
		}

		if batch.Len() != k {
			t.Errorf("expected %d codes, got %d", k, batch.Len())
		}

		after := store.Snapshot("P002")
		if after.LastNumber-before.LastNumber != k {
			t.Errorf("expected LastNumber to grow by %d, grew by %d", k, after.LastNumber-before.LastNumber)
		}
		if after.IssuedCount-before.IssuedCount != k {
			t.Errorf("expected IssuedCount to grow by %d, grew by %d", k, after.IssuedCount-before.IssuedCount)
		}

		for i, code := range batch.Codes {
			want := fmt.Sprintf("P002-%02d", expectedNext+i)
			if code != want {
				t.Errorf("expected %s, got %s", want, code)
			}
		}
		expectedNext += k
	}

	if store.Sets != 5 {
		t.Errorf("expected one store write per batch, got %d", store.Sets)
	}
}

func TestGenerateFormatting(t *testing.T) {
	ctx := context.Background()
	gen := New(tu.NewStubCounterStore(nil), Options{Products: catalog})

	batch, err := gen.Generate(ctx, fullRequest("P002", 1))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if len(batch.Codes) != 1 {
		t.Fatalf("expected 1 code, got %d", len(batch.Codes))
	}
	if batch.Codes[0] != "Abc Company-P002-01-10-L5-2024-01-01-1" {
		t.Errorf("unexpected code %q", batch.Codes[0])
	}
	if batch.ProductName != "Product 2" {
		t.Errorf("expected product name on batch, got %q", batch.ProductName)
	}
}

func TestGenerateErrors(t *testing.T) {
	ctx := context.Background()
	seed := map[string]models.Counter{"P001": {LastNumber: 7, IssuedCount: 7}}

	tc := []struct {
		name    string
		format  Format
		req     models.Request
		wantErr error
	}{
		{name: "zero quantity", format: minimal, req: models.Request{ProductCode: "P001", Quantity: 0}, wantErr: shared.ErrValidation},
		{name: "negative quantity", format: minimal, req: models.Request{ProductCode: "P001", Quantity: -2}, wantErr: shared.ErrValidation},
		{name: "too many", format: minimal, req: models.Request{ProductCode: "P001", Quantity: MaxQuantity + 1}, wantErr: shared.ErrValidation},
		{name: "missing product", format: minimal, req: models.Request{Quantity: 1}, wantErr: shared.ErrValidation},
		{name: "unknown product", format: minimal, req: models.Request{ProductCode: "P999", Quantity: 1}, wantErr: shared.ErrProductNotFound},
		{name: "full format needs lot", format: Format{Fields: FullFields, Delimiter: "-", PadWidth: 2}, req: func() models.Request {
			r := fullRequest("P001", 1)
			r.Lot = "  "
			return r
		}(), wantErr: shared.ErrValidation},
		{name: "multi-line field", format: Format{Fields: FullFields, Delimiter: "-", PadWidth: 2}, req: func() models.Request {
			r := fullRequest("P001", 1)
			r.Company = "Abc\nCompany"
			return r
		}(), wantErr: shared.ErrValidation},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			store := tu.NewStubCounterStore(seed)
			gen := New(store, Options{Products: catalog, Format: tt.format})

			batch, err := gen.Generate(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if batch != nil {
				t.Error("expected no batch on error")
			}
			if store.Sets != 0 {
				t.Errorf("expected store untouched, got %d writes", store.Sets)
			}
			if got := store.Snapshot("P001"); got != seed["P001"] {
				t.Errorf("expected counter unchanged, got %+v", got)
			}
			if current, _ := gen.Batch(); current != nil {
				t.Error("expected no current batch after failure")
			}
		})
	}
}

func TestGeneratePersistenceFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("read failure", func(t *testing.T) {
		store := tu.NewStubCounterStore(nil)
		store.GetErr = errors.New("disk unplugged")
		gen := New(store, Options{Products: catalog, Format: minimal})

		_, err := gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 1})
		if !errors.Is(err, shared.ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}
	})

	t.Run("write failure keeps previous state", func(t *testing.T) {
		store := tu.NewStubCounterStore(nil)
		gen := New(store, Options{Products: catalog, Format: minimal})

		first, err := gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 2})
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		store.SetErr = errors.New("quota exceeded")
		_, err = gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 3})
		if !errors.Is(err, shared.ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}

		if current, _ := gen.Batch(); current != first {
			t.Error("expected the previous batch to stay current")
		}
		if p, _ := gen.Product("P001"); p.LastNumber != 2 {
			t.Errorf("expected in-memory LastNumber 2, got %d", p.LastNumber)
		}

		store.SetErr = nil
		next, err := gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 1})
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if next.Codes[0] != "P001-03" {
			t.Errorf("expected no gap after failed write, got %s", next.Codes[0])
		}
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := tu.NewStubCounterStore(nil)
	gen := New(store, Options{Products: catalog, Format: minimal})

	if _, err := gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 2}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if current, req := gen.Batch(); current == nil || req == nil {
		t.Fatal("expected current batch and request after generate")
	}

	for i := 0; i < 3; i++ {
		gen.Reset()

		current, req := gen.Batch()
		if current != nil || req != nil {
			t.Fatalf("expected cleared state after reset #%d", i+1)
		}
		if got := store.Snapshot("P001"); got.LastNumber != 2 || got.IssuedCount != 2 {
			t.Errorf("reset must not touch counters, got %+v", got)
		}
	}
	if store.Sets != 1 {
		t.Errorf("expected a single store write, got %d", store.Sets)
	}
}

func TestBatchHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("records committed batches", func(t *testing.T) {
		history := &tu.StubBatchStore{}
		gen := New(tu.NewStubCounterStore(nil), Options{Products: catalog, Format: minimal, Batches: history})

		batch, err := gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 2})
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if len(history.Batches) != 1 || history.Batches[0] != batch {
			t.Errorf("expected batch to be recorded, got %v", history.Batches)
		}
	})

	t.Run("history failure does not fail generation", func(t *testing.T) {
		history := &tu.StubBatchStore{RecordErr: errors.New("no table")}
		store := tu.NewStubCounterStore(nil)
		gen := New(store, Options{Products: catalog, Format: minimal, Batches: history})

		if _, err := gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 2}); err != nil {
			t.Fatalf("generate should succeed, got %v", err)
		}
		if store.Snapshot("P001").LastNumber != 2 {
			t.Error("expected counter to be committed")
		}
	})
}

func TestSetCounter(t *testing.T) {
	ctx := context.Background()
	store := tu.NewStubCounterStore(map[string]models.Counter{"P001": {LastNumber: 4, IssuedCount: 4}})
	gen := New(store, Options{Products: catalog, Format: minimal})

	if _, err := gen.SetCounter(ctx, "P001", 3); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("expected ErrValidation when lowering, got %v", err)
	}
	if _, err := gen.SetCounter(ctx, "NOPE", 10); !errors.Is(err, shared.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}

	counter, err := gen.SetCounter(ctx, "P001", 40)
	if err != nil {
		t.Fatalf("set counter failed: %v", err)
	}
	if counter.LastNumber != 40 || counter.IssuedCount != 4 {
		t.Errorf("expected 40/4, got %+v", counter)
	}

	batch, err := gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 1})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if batch.Codes[0] != "P001-41" {
		t.Errorf("expected P001-41, got %s", batch.Codes[0])
	}
}

func TestConcurrentGenerate(t *testing.T) {
	ctx := context.Background()
	store := tu.NewStubCounterStore(nil)
	gen := New(store, Options{Products: catalog, Format: Format{Fields: MinimalFields, Delimiter: "-", PadWidth: 4}})

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = map[string]bool{}
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch, err := gen.Generate(ctx, models.Request{ProductCode: "P001", Quantity: 5})
			if err != nil {
				t.Errorf("generate failed: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, c := range batch.Codes {
				if codes[c] {
					t.Errorf("duplicate code %s", c)
				}
				codes[c] = true
			}
		}()
	}
	wg.Wait()

	if len(codes) != 100 {
		t.Errorf("expected 100 distinct codes, got %d", len(codes))
	}
	if got := store.Snapshot("P001"); got.LastNumber != 100 {
		t.Errorf("expected LastNumber 100, got %d", got.LastNumber)
	}
}
