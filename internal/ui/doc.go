// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one generation at a time:
//  1. [ProductListView] : Pick a product; each row shows its last issued number
//  2. [FormView] : Fill the fields the code format embeds and the quantity
//  3. [ResultView] : Review generated codes, then export, print or reset
//  4. [ExportView] : Monitor rendering progress while the PDF is written
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the [tasks.Pipeline], providing non-blocking status reporting during exports.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, e/p/r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
