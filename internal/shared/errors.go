package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Generation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrPersistence     = fmt.Errorf("persistence failed")

	// Rendering and export errors
	ErrRender = fmt.Errorf("render failed")
	ErrExport = fmt.Errorf("export failed")

	// Input errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
