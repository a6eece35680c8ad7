package sequence

import (
	"errors"
	"testing"

	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
)

func TestNewFormat(t *testing.T) {
	t.Run("modes", func(t *testing.T) {
		tc := []struct {
			mode string
			want int
		}{
			{mode: "full", want: len(FullFields)},
			{mode: "", want: len(FullFields)},
			{mode: "minimal", want: len(MinimalFields)},
		}

		for _, tt := range tc {
			f, err := NewFormat(shared.FormatConfig{Mode: tt.mode, Delimiter: "-", PadWidth: 2})
			if err != nil {
				t.Fatalf("mode %q: unexpected error %v", tt.mode, err)
			}
			if len(f.Fields) != tt.want {
				t.Errorf("mode %q: expected %d fields, got %d", tt.mode, tt.want, len(f.Fields))
			}
		}
	})

	t.Run("custom", func(t *testing.T) {
		f, err := NewFormat(shared.FormatConfig{Mode: "custom", Fields: []string{"Product", " lot ", "number"}, Delimiter: "/", PadWidth: 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		code := f.Code(models.Product{Code: "P9"}, models.Request{Lot: "A1", Quantity: 1}, 7)
		if code != "P9/A1/007" {
			t.Errorf("unexpected code %q", code)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tc := []shared.FormatConfig{
			{Mode: "weird"},
			{Mode: "custom", Fields: []string{"product"}},
			{Mode: "custom", Fields: []string{"number", "colour"}},
			{Mode: "custom", Fields: []string{"number", "lot", "lot"}},
		}
		for _, cfg := range tc {
			if _, err := NewFormat(cfg); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("%+v: expected ErrInvalidConfig, got %v", cfg, err)
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		f, err := NewFormat(shared.FormatConfig{Mode: "minimal"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Delimiter != "-" || f.PadWidth != 2 {
			t.Errorf("expected default delimiter and width, got %+v", f)
		}
	})
}

func TestFormatPad(t *testing.T) {
	f := Format{Fields: MinimalFields, Delimiter: "-", PadWidth: 2}

	tc := []struct {
		n        int
		want     string
		overflow bool
	}{
		{n: 1, want: "01"},
		{n: 42, want: "42"},
		{n: 99, want: "99"},
		{n: 100, want: "100", overflow: true},
		{n: 12345, want: "12345", overflow: true},
	}

	for _, tt := range tc {
		if got := f.Pad(tt.n); got != tt.want {
			t.Errorf("Pad(%d) = %q, want %q", tt.n, got, tt.want)
		}
		if got := f.Overflows(tt.n); got != tt.overflow {
			t.Errorf("Overflows(%d) = %v, want %v", tt.n, got, tt.overflow)
		}
	}
}

func TestFormatRequired(t *testing.T) {
	full := Format{Fields: FullFields, Delimiter: "-", PadWidth: 2}
	got := full.Required()
	want := []Field{FieldCompany, FieldCount, FieldLot, FieldDate}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}

	if len(minimal.Required()) != 0 {
		t.Errorf("minimal format should require no text fields")
	}
	if err := minimal.Validate(models.Request{ProductCode: "P001", Quantity: 1}); err != nil {
		t.Errorf("minimal request should validate: %v", err)
	}
}

func TestFormatValidateLines(t *testing.T) {
	full := Format{Fields: FullFields, Delimiter: "-", PadWidth: 2}
	req := models.Request{
		ProductCode: "P001",
		Quantity:    1,
		Company:     "Abc Company",
		Count:       "10",
		Lot:         "L5\nL6",
		Date:        "2024-01-01",
	}

	if err := full.Validate(req); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("expected ErrValidation for a multi-line lot, got %v", err)
	}

	if !minimal.Has(FieldProduct) || minimal.Has(FieldLot) {
		t.Fatalf("unexpected fields for minimal format: %v", minimal.Fields)
	}
	if err := minimal.Validate(req); err != nil {
		t.Errorf("fields outside the format are not embedded and should be ignored: %v", err)
	}
}

func TestFormatParse(t *testing.T) {
	t.Run("round trip minimal", func(t *testing.T) {
		code := minimal.Code(models.Product{Code: "P001"}, models.Request{Quantity: 3}, 12)

		decoded, err := minimal.Parse(code)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if decoded.Number != 12 || decoded.Fields[FieldProduct] != "P001" {
			t.Errorf("unexpected decode %+v", decoded)
		}
	})

	t.Run("round trip full without delimiters in text", func(t *testing.T) {
		f := Format{Fields: FullFields, Delimiter: "|", PadWidth: 3}
		req := models.Request{Quantity: 5, Company: "Abc Company", Count: "10", Lot: "L5", Date: "2024-01-01"}
		code := f.Code(models.Product{Code: "P002"}, req, 4)

		if code != "Abc Company|P002|004|10|L5|2024-01-01|5" {
			t.Fatalf("unexpected code %q", code)
		}

		decoded, err := f.Parse(code)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if decoded.Number != 4 || decoded.Fields[FieldDate] != "2024-01-01" || decoded.Fields[FieldQuantity] != "5" {
			t.Errorf("unexpected decode %+v", decoded)
		}
	})

	t.Run("ambiguous full code", func(t *testing.T) {
		f := Format{Fields: FullFields, Delimiter: "-", PadWidth: 2}
		if _, err := f.Parse("Abc Company-P002-01-10-L5-2024-01-01-1"); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation for delimiter inside a field, got %v", err)
		}
	})

	t.Run("bad number", func(t *testing.T) {
		if _, err := minimal.Parse("P001-xx"); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}
