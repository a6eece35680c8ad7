// Package render draws generated codes as linear barcode images.
//
// A [Renderer] is built once from [shared.RenderConfig] and is safe for
// concurrent use. Symbol encoding is delegated to github.com/boombuler/barcode;
// the renderer only sanitizes the payload, scales the symbol and composes it
// onto a padded canvas with an optional human readable line underneath.
//
// Supported symbologies:
//   - CODE39 (default): upper-case letters, digits, space and - . $ / + %
//   - CODE93: same character set with a denser encoding
//   - CODE128: full ASCII, no case folding
package render
