package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/sequence"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/desertthunder/barcodegen/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ProductListView ViewState = iota
	FormView
	ResultView
	ExportView
)

const quantityField = "quantity"

// formField is one labelled text input of the generation form.
type formField struct {
	name  string
	label string
	input textinput.Model
}

// Options configures a [Model].
type Options struct {
	Generator  *sequence.Generator
	Pipeline   *tasks.Pipeline
	ExportPath string                  // PDF destination, defaults to barcodes.pdf
	Company    string                  // prefilled company name
	Open       func(path string) error // opens the exported PDF for printing
	Logger     *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	gen          *sequence.Generator
	pipeline     *tasks.Pipeline
	exportPath   string
	company      string
	open         func(path string) error
	logger       *log.Logger
	width        int
	height       int
	productList  list.Model
	product      models.Product
	fields       []formField
	focus        int
	batch        *models.Batch
	generating   bool // a generate command is in flight
	progressChan chan tasks.ProgressUpdate
	doneChan     chan exportCompleteMsg
	progress     tasks.ProgressUpdate
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.ExportPath == "" {
		opts.ExportPath = "barcodes.pdf"
	}
	if opts.Open == nil {
		opts.Open = shared.OpenDocument
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	m := &Model{
		ctx:        ctx,
		view:       ProductListView,
		gen:        opts.Generator,
		pipeline:   opts.Pipeline,
		exportPath: opts.ExportPath,
		company:    opts.Company,
		open:       opts.Open,
		logger:     opts.Logger,
		help:       help.New(),
		keys:       newKeyMap(),
	}
	m.productList = list.New(productItems(m.gen.Products()), list.NewDefaultDelegate(), 0, 0)
	m.productList.Title = "Products"
	return m
}

// Init has nothing to fetch; products are loaded before the program starts.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.productList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ProductListView:
			return m.handleProductListKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ExportView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case generatedMsg:
		m.generating = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = ""
		m.batch = msg.batch
		m.productList.SetItems(productItems(m.gen.Products()))
		m.view = ResultView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case exportCompleteMsg:
		m.progressChan = nil
		m.doneChan = nil
		m.view = ResultView
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Saved %s", msg.path)
		if msg.print {
			m.status = fmt.Sprintf("Opened %s for printing", msg.path)
		}
		if msg.failed > 0 {
			m.status += fmt.Sprintf(" (%d barcodes could not be rendered)", msg.failed)
		}
		return m, nil
	}

	if m.view == ProductListView {
		var cmd tea.Cmd
		m.productList, cmd = m.productList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ProductListView:
		return m.renderProductList()
	case FormView:
		return m.renderForm()
	case ResultView:
		return m.renderResult()
	case ExportView:
		return m.renderExport()
	default:
		return ""
	}
}

func (m *Model) handleProductListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.productList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			if selected, ok := m.productList.SelectedItem().(productItem); ok {
				return m, m.openForm(selected.product)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.productList, cmd = m.productList.Update(msg)
	return m, cmd
}

// openForm builds inputs for the fields the active format embeds plus quantity.
func (m *Model) openForm(p models.Product) tea.Cmd {
	m.product = p
	m.err = nil
	m.fields = m.fields[:0]

	for _, f := range m.gen.Format().Required() {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 64
		if f == sequence.FieldCompany {
			in.SetValue(m.company)
		}
		m.fields = append(m.fields, formField{name: string(f), label: strings.ToUpper(string(f[:1])) + string(f[1:]), input: in})
	}

	qty := textinput.New()
	qty.Prompt = ""
	qty.CharLimit = 6
	qty.Placeholder = "1"
	m.fields = append(m.fields, formField{name: quantityField, label: "Number of barcodes", input: qty})

	m.focus = 0
	m.view = FormView
	return m.fields[0].input.Focus()
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.generating {
			return m, nil
		}
		m.view = ProductListView
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.focus < len(m.fields)-1 {
			return m, m.setFocus(m.focus + 1)
		}
		if m.generating {
			return m, nil
		}
		req, err := m.request()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.generating = true
		return m, m.generate(req)
	case key.Matches(msg, m.keys.next):
		return m, m.setFocus((m.focus + 1) % len(m.fields))
	case key.Matches(msg, m.keys.prev):
		return m, m.setFocus((m.focus - 1 + len(m.fields)) % len(m.fields))
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.fields[m.focus].input.Blur()
	m.focus = i
	return m.fields[i].input.Focus()
}

// request assembles a [models.Request] from the form inputs.
func (m *Model) request() (models.Request, error) {
	req := models.Request{ProductCode: m.product.Code}
	for _, f := range m.fields {
		v := f.input.Value()
		switch f.name {
		case string(sequence.FieldCompany):
			req.Company = v
		case string(sequence.FieldCount):
			req.Count = v
		case string(sequence.FieldLot):
			req.Lot = v
		case string(sequence.FieldDate):
			req.Date = v
		case quantityField:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return req, fmt.Errorf("%w: quantity must be a whole number", shared.ErrValidation)
			}
			req.Quantity = n
		}
	}
	return req, nil
}

func (m *Model) generate(req models.Request) tea.Cmd {
	return func() tea.Msg {
		batch, err := m.gen.Generate(m.ctx, req)
		return generatedMsg{batch: batch, err: err}
	}
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.export):
		return m, m.startExport(false)
	case key.Matches(msg, m.keys.print):
		return m, m.startExport(true)
	case key.Matches(msg, m.keys.reset):
		m.gen.Reset()
		m.batch = nil
		m.status = ""
		m.err = nil
		m.view = ProductListView
		return m, nil
	}
	return m, nil
}

// startExport renders the current batch to the PDF path on a background goroutine.
func (m *Model) startExport(openAfter bool) tea.Cmd {
	if m.batch == nil {
		return nil
	}

	batch := m.batch
	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan exportCompleteMsg, 1)
	m.progressChan = progress
	m.doneChan = done
	m.progress = tasks.ProgressUpdate{}
	m.view = ExportView

	go func() {
		defer close(progress)

		doc, result, err := m.pipeline.RenderDocument(m.ctx, progress, batch)
		if err != nil {
			done <- exportCompleteMsg{err: err}
			return
		}
		if err := os.WriteFile(m.exportPath, doc, 0644); err != nil {
			done <- exportCompleteMsg{err: fmt.Errorf("%w: %v", shared.ErrExport, err)}
			return
		}
		m.logger.Info("exported barcodes", "path", m.exportPath, "count", result.Rendered, "failed", result.Failed)

		if openAfter {
			if err := m.open(m.exportPath); err != nil {
				done <- exportCompleteMsg{path: m.exportPath, err: err}
				return
			}
		}
		done <- exportCompleteMsg{path: m.exportPath, failed: result.Failed, print: openAfter}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progress == nil {
			return exportCompleteMsg{err: fmt.Errorf("%w: no export running", shared.ErrExport)}
		}

		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderProductList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.productList.View(), helpView)
}

func (m *Model) renderForm() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Generate %s (%s)", m.product.Name, m.product.Code)))
	b.WriteString("\n")
	b.WriteString(styles.help.Render(fmt.Sprintf("Next number: %s", m.gen.Format().Pad(m.product.LastNumber+1))))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		label := f.label
		if i == m.focus {
			label = styles.focused.Render("> " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(fmt.Sprintf("%s\n  %s\n\n", label, f.input.View()))
	}

	if m.err != nil {
		b.WriteString(styles.error.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next / generate"))
	b.WriteString(m.help.ShortHelpView([]key.Binding{submit, m.keys.next, m.keys.back}))
	return b.String()
}

func (m *Model) renderResult() string {
	if m.batch == nil {
		return styles.error.Render("No barcodes generated\n\nPress r to reset, q to quit")
	}

	var b strings.Builder
	b.WriteString(styles.success.Render(fmt.Sprintf("✓ Generated %d codes for %s", m.batch.Len(), m.batch.ProductName)))
	b.WriteString("\n")
	b.WriteString(styles.help.Render(fmt.Sprintf("Numbers %d-%d", m.batch.First, m.batch.Last)))
	b.WriteString("\n\n")

	limit := m.batch.Len()
	if m.height > 0 {
		limit = min(limit, max(m.height-12, 3))
	}
	for _, code := range m.batch.Codes[:limit] {
		b.WriteString(styles.code.Render(code))
		b.WriteString("\n")
	}
	if rest := m.batch.Len() - limit; rest > 0 {
		b.WriteString(styles.help.Render(fmt.Sprintf("... and %d more", rest)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n" + styles.success.Render(m.status) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + styles.error.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.export, m.keys.print, m.keys.reset, m.keys.quit}))
	return b.String()
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Barcodes")

	var phase string
	switch m.progress.Phase {
	case tasks.RenderCodes:
		phase = fmt.Sprintf("Rendering barcodes (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ExportDocument:
		phase = "Writing PDF..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}
