package render

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"github.com/desertthunder/barcodegen/internal/shared"
)

func testConfig() shared.RenderConfig {
	return shared.DefaultConfig().Render
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r, err := New(shared.RenderConfig{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Symbology() != Code39 {
			t.Errorf("expected CODE39, got %s", r.Symbology())
		}
		if r.height != 30 || r.moduleWidth != 1 {
			t.Errorf("unexpected defaults height=%d module=%d", r.height, r.moduleWidth)
		}
	})

	tc := []struct {
		name string
		cfg  shared.RenderConfig
	}{
		{name: "unknown symbology", cfg: shared.RenderConfig{Symbology: "QR"}},
		{name: "bad background", cfg: shared.RenderConfig{Background: "not-a-color"}},
		{name: "bad foreground", cfg: shared.RenderConfig{Foreground: "#12"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestPayload(t *testing.T) {
	tc := []struct {
		name string
		cfg  shared.RenderConfig
		in   string
		want string
	}{
		{name: "code39 upper-cases", cfg: shared.RenderConfig{Symbology: "CODE39"}, in: "Abc Company-P002-01", want: "ABC COMPANY-P002-01"},
		{name: "code93 upper-cases", cfg: shared.RenderConfig{Symbology: "code93"}, in: "lot-7", want: "LOT-7"},
		{name: "full ascii keeps case", cfg: shared.RenderConfig{Symbology: "CODE39", FullASCII: true}, in: "Lot-7", want: "Lot-7"},
		{name: "code128 keeps case", cfg: shared.RenderConfig{Symbology: "CODE128"}, in: "Lot-7", want: "Lot-7"},
		{name: "wide forms fold", cfg: shared.RenderConfig{Symbology: "CODE128"}, in: "Ｐ００１", want: "P001"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := r.Payload(tt.in); got != tt.want {
				t.Errorf("Payload(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	for _, sym := range []Symbology{Code39, Code93, Code128} {
		t.Run(string(sym), func(t *testing.T) {
			cfg := testConfig()
			cfg.Symbology = string(sym)

			r, err := New(cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			img, err := r.Render("Abc Company-P002-01-10-L5-2024-01-01-1")
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}

			b := img.Bounds()
			if b.Dy() <= cfg.Height+2*cfg.Margin {
				t.Errorf("expected room for the text line, got height %d", b.Dy())
			}

			corner := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
			if corner.R != 0xf5 || corner.G != 0xf5 || corner.B != 0xf5 {
				t.Errorf("expected background #f5f5f5 at the corner, got %+v", corner)
			}

			var bars int
			y := cfg.Margin + cfg.Height/2
			for x := b.Min.X; x < b.Max.X; x++ {
				if dark(img.At(x, y)) {
					bars++
				}
			}
			if bars == 0 {
				t.Error("expected dark modules in the bar area")
			}
		})
	}

	t.Run("no text", func(t *testing.T) {
		cfg := testConfig()
		cfg.DisplayValue = false

		r, _ := New(cfg)
		img, err := r.Render("P001-01")
		if err != nil {
			t.Fatalf("render failed: %v", err)
		}
		if img.Bounds().Dy() != cfg.Height+2*cfg.Margin {
			t.Errorf("expected height %d, got %d", cfg.Height+2*cfg.Margin, img.Bounds().Dy())
		}
	})

	t.Run("wider modules widen the symbol", func(t *testing.T) {
		cfg := testConfig()
		cfg.DisplayValue = false

		narrow, _ := New(cfg)
		cfg.ModuleWidth = 2
		wide, _ := New(cfg)

		a, _ := narrow.Render("P001-01")
		b, _ := wide.Render("P001-01")
		if b.Bounds().Dx() <= a.Bounds().Dx() {
			t.Errorf("expected wider image, got %d vs %d", b.Bounds().Dx(), a.Bounds().Dx())
		}
	})

	t.Run("unencodable payload", func(t *testing.T) {
		r, _ := New(testConfig())
		if _, err := r.Render("P001#01"); !errors.Is(err, shared.ErrRender) {
			t.Errorf("expected ErrRender, got %v", err)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		r, _ := New(testConfig())
		if _, err := r.Render(""); !errors.Is(err, shared.ErrRender) {
			t.Errorf("expected ErrRender, got %v", err)
		}
	})
}

func TestRenderPNG(t *testing.T) {
	r, err := New(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := r.RenderPNG("P001-01")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	if img.Bounds().Empty() {
		t.Error("expected a non-empty image")
	}
}
