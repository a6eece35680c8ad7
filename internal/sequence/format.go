package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
)

// Field names one component of a generated code.
type Field string

const (
	FieldCompany  Field = "company"
	FieldProduct  Field = "product"
	FieldNumber   Field = "number"
	FieldCount    Field = "count"
	FieldLot      Field = "lot"
	FieldDate     Field = "date"
	FieldQuantity Field = "quantity"
)

var (
	// FullFields is company-product-NN-count-lot-date-quantity.
	FullFields = []Field{FieldCompany, FieldProduct, FieldNumber, FieldCount, FieldLot, FieldDate, FieldQuantity}
	// MinimalFields is product-NN.
	MinimalFields = []Field{FieldProduct, FieldNumber}
)

// Format assembles codes from a fixed field order and delimiter.
type Format struct {
	Fields    []Field
	Delimiter string
	PadWidth  int
}

// Decoded is a code split back into its fields.
type Decoded struct {
	Fields map[Field]string `json:"fields"`
	Number int              `json:"number"`
}

// NewFormat builds a [Format] from configuration.
func NewFormat(cfg shared.FormatConfig) (Format, error) {
	f := Format{Delimiter: cfg.Delimiter, PadWidth: cfg.PadWidth}
	if f.Delimiter == "" {
		f.Delimiter = "-"
	}
	if f.PadWidth <= 0 {
		f.PadWidth = 2
	}

	switch cfg.Mode {
	case "", "full":
		f.Fields = FullFields
	case "minimal":
		f.Fields = MinimalFields
	case "custom":
		fields := make([]Field, 0, len(cfg.Fields))
		for _, name := range cfg.Fields {
			fields = append(fields, Field(strings.ToLower(strings.TrimSpace(name))))
		}
		f.Fields = fields
	default:
		return Format{}, fmt.Errorf("%w: unknown format mode %q", shared.ErrInvalidConfig, cfg.Mode)
	}

	if err := f.check(); err != nil {
		return Format{}, err
	}
	return f, nil
}

func (f Format) check() error {
	seen := make(map[Field]bool, len(f.Fields))
	for _, field := range f.Fields {
		switch field {
		case FieldCompany, FieldProduct, FieldNumber, FieldCount, FieldLot, FieldDate, FieldQuantity:
		default:
			return fmt.Errorf("%w: unknown format field %q", shared.ErrInvalidConfig, field)
		}
		if seen[field] {
			return fmt.Errorf("%w: duplicate format field %q", shared.ErrInvalidConfig, field)
		}
		seen[field] = true
	}

	if !seen[FieldNumber] {
		return fmt.Errorf("%w: format must include the number field", shared.ErrInvalidConfig)
	}
	return nil
}

// Has reports whether field participates in the format.
func (f Format) Has(field Field) bool {
	for _, candidate := range f.Fields {
		if candidate == field {
			return true
		}
	}
	return false
}

// Required lists the request text fields the format embeds, in format order.
func (f Format) Required() []Field {
	var required []Field
	for _, field := range f.Fields {
		switch field {
		case FieldCompany, FieldCount, FieldLot, FieldDate:
			required = append(required, field)
		}
	}
	return required
}

// Validate checks req against the format without consulting any store.
func (f Format) Validate(req models.Request) error {
	if strings.TrimSpace(req.ProductCode) == "" {
		return fmt.Errorf("%w: product is required", shared.ErrValidation)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer, got %d", shared.ErrValidation, req.Quantity)
	}

	for _, field := range f.Required() {
		if strings.TrimSpace(requestValue(req, field)) == "" {
			return fmt.Errorf("%w: %s is required", shared.ErrValidation, field)
		}
	}

	for _, field := range []Field{FieldCompany, FieldCount, FieldLot, FieldDate} {
		if f.Has(field) && strings.ContainsAny(requestValue(req, field), "\r\n") {
			return fmt.Errorf("%w: %s must be a single line", shared.ErrValidation, field)
		}
	}
	return nil
}

// Code formats the code for number within a batch described by req.
func (f Format) Code(product models.Product, req models.Request, number int) string {
	parts := make([]string, 0, len(f.Fields))
	for _, field := range f.Fields {
		switch field {
		case FieldProduct:
			parts = append(parts, product.Code)
		case FieldNumber:
			parts = append(parts, f.Pad(number))
		case FieldQuantity:
			parts = append(parts, strconv.Itoa(req.Quantity))
		default:
			parts = append(parts, requestValue(req, field))
		}
	}
	return strings.Join(parts, f.Delimiter)
}

// Pad zero pads n to the configured width. Wider numbers are not truncated.
func (f Format) Pad(n int) string {
	return fmt.Sprintf("%0*d", f.PadWidth, n)
}

// Overflows reports whether n no longer fits in the pad width.
func (f Format) Overflows(n int) bool {
	return len(strconv.Itoa(n)) > f.PadWidth
}

// Parse splits code back into fields.
//
// It only succeeds when no field value contains the delimiter, which holds for the
// minimal layout and for full layouts without delimiter characters in free text.
func (f Format) Parse(code string) (*Decoded, error) {
	parts := strings.Split(code, f.Delimiter)
	if len(parts) != len(f.Fields) {
		return nil, fmt.Errorf("%w: expected %d fields separated by %q, got %d", shared.ErrValidation, len(f.Fields), f.Delimiter, len(parts))
	}

	decoded := &Decoded{Fields: make(map[Field]string, len(parts))}
	for i, field := range f.Fields {
		decoded.Fields[field] = parts[i]
	}

	n, err := strconv.Atoi(decoded.Fields[FieldNumber])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%w: invalid sequence number %q", shared.ErrValidation, decoded.Fields[FieldNumber])
	}
	decoded.Number = n
	return decoded, nil
}

func requestValue(req models.Request, field Field) string {
	switch field {
	case FieldCompany:
		return req.Company
	case FieldCount:
		return req.Count
	case FieldLot:
		return req.Lot
	case FieldDate:
		return req.Date
	default:
		return ""
	}
}
