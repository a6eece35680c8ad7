package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/width"
)

// Symbology names a supported barcode encoding.
type Symbology string

const (
	Code39  Symbology = "CODE39"
	Code93  Symbology = "CODE93"
	Code128 Symbology = "CODE128"
)

const textGap = 4

// Renderer turns codes into barcode images.
type Renderer struct {
	symbology   Symbology
	moduleWidth int
	height      int
	margin      int
	background  color.Color
	foreground  color.Color
	showText    bool
	fullASCII   bool
	face        font.Face
}

// New validates cfg and builds a [Renderer].
func New(cfg shared.RenderConfig) (*Renderer, error) {
	sym := Symbology(strings.ToUpper(strings.TrimSpace(cfg.Symbology)))
	if sym == "" {
		sym = Code39
	}
	switch sym {
	case Code39, Code93, Code128:
	default:
		return nil, fmt.Errorf("%w: unsupported symbology %q", shared.ErrInvalidConfig, cfg.Symbology)
	}

	bg, err := parseColor(cfg.Background, "#f5f5f5")
	if err != nil {
		return nil, err
	}
	fg, err := parseColor(cfg.Foreground, "#000000")
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		symbology:   sym,
		moduleWidth: max(cfg.ModuleWidth, 1),
		height:      cfg.Height,
		margin:      max(cfg.Margin, 0),
		background:  bg,
		foreground:  fg,
		showText:    cfg.DisplayValue,
		fullASCII:   cfg.FullASCII,
		face:        basicfont.Face7x13,
	}
	if r.height <= 0 {
		r.height = 30
	}
	return r, nil
}

// Symbology returns the configured encoding.
func (r *Renderer) Symbology() Symbology {
	return r.symbology
}

// Payload returns the text that is actually encoded for code.
//
// Wide and compatibility characters are folded to their narrow forms. CODE39
// and CODE93 payloads are upper-cased unless full ASCII mode is enabled.
func (r *Renderer) Payload(code string) string {
	payload := width.Fold.String(code)
	if r.symbology != Code128 && !r.fullASCII {
		payload = strings.ToUpper(payload)
	}
	return payload
}

// Render draws code. Errors wrap [shared.ErrRender].
func (r *Renderer) Render(code string) (image.Image, error) {
	payload := r.Payload(code)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", shared.ErrRender)
	}

	symbol, err := r.encode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrRender, code, err)
	}

	barWidth := symbol.Bounds().Dx() * r.moduleWidth
	scaled, err := barcode.Scale(symbol, barWidth, r.height)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrRender, code, err)
	}

	var textWidth, textHeight int
	if r.showText {
		textWidth = font.MeasureString(r.face, payload).Ceil()
		textHeight = r.face.Metrics().Height.Ceil() + textGap
	}

	canvasWidth := max(barWidth, textWidth) + 2*r.margin
	canvasHeight := r.height + textHeight + 2*r.margin
	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)

	left := r.margin + (canvasWidth-2*r.margin-barWidth)/2
	r.drawBars(canvas, scaled, image.Pt(left, r.margin))

	if r.showText {
		d := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(r.foreground),
			Face: r.face,
			Dot: fixed.Point26_6{
				X: fixed.I(r.margin + (canvasWidth-2*r.margin-textWidth)/2),
				Y: fixed.I(r.margin+r.height+textGap) + r.face.Metrics().Ascent,
			},
		}
		d.DrawString(payload)
	}

	return canvas, nil
}

// RenderPNG renders code and encodes it as PNG.
func (r *Renderer) RenderPNG(code string) ([]byte, error) {
	img, err := r.Render(code)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("%w: failed to encode png: %v", shared.ErrRender, err)
	}
	return nil
}

func (r *Renderer) encode(payload string) (barcode.Barcode, error) {
	switch r.symbology {
	case Code93:
		return code93.Encode(payload, true, r.fullASCII)
	case Code128:
		return code128.Encode(payload)
	default:
		return code39.Encode(payload, false, r.fullASCII)
	}
}

// drawBars copies dark modules of symbol onto dst in the foreground color.
func (r *Renderer) drawBars(dst draw.Image, symbol image.Image, at image.Point) {
	b := symbol.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if dark(symbol.At(x, y)) {
				dst.Set(at.X+x-b.Min.X, at.Y+y-b.Min.Y, r.foreground)
			}
		}
	}
}

func dark(c color.Color) bool {
	return color.GrayModel.Convert(c).(color.Gray).Y < 128
}

func parseColor(hex, fallback string) (color.Color, error) {
	if strings.TrimSpace(hex) == "" {
		hex = fallback
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid color %q: %v", shared.ErrInvalidConfig, hex, err)
	}
	return c, nil
}
