// Package web serves the browser form for generating, exporting and printing barcodes.
//
// Routes
//
//	GET  /              → form with the current batch
//	POST /generate      → generate a batch (HTML, or JSON when Accept: application/json)
//	POST /reset         → clear the current batch
//	GET  /barcode.png   → one rendered code (?code=)
//	GET  /barcodes.pdf  → current batch as PDF (?inline=1 to open in the browser for printing)
//	GET  /counters      → JSON snapshot of every product counter
//
// The handler shares one [sequence.Generator] with every request, so concurrent
// form posts are serialized by the generator and never reuse numbers.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/sequence"
	"github.com/desertthunder/barcodegen/internal/server"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/desertthunder/barcodegen/internal/tasks"
)

//go:embed templates/*.html
var templateFiles embed.FS

var _ server.Handler = (*Handler)(nil)

// maxCodeLength bounds /barcode.png payloads.
const maxCodeLength = 256

// PNGRenderer renders a single code as PNG bytes. Implemented by render.Renderer.
type PNGRenderer interface {
	RenderPNG(code string) ([]byte, error)
}

// Options configures a [Handler].
type Options struct {
	Generator *sequence.Generator
	Pipeline  *tasks.Pipeline
	Renderer  PNGRenderer
	Company   string // prefilled company name
	Filename  string // PDF download name
	Logger    *log.Logger
}

// Handler implements [server.Handler] for the barcode form.
type Handler struct {
	gen      *sequence.Generator
	pipeline *tasks.Pipeline
	renderer PNGRenderer
	company  string
	filename string
	logger   *log.Logger
	tmpl     *template.Template
}

// CounterView is one entry of the /counters response.
type CounterView struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	LastNumber  int    `json:"last_number"`
	IssuedCount int    `json:"issued_count"`
}

type pageData struct {
	Products []models.Product
	Form     models.Request
	Needs    map[string]bool
	Batch    *models.Batch
	Error    string
	Filename string
}

// New parses the embedded templates and builds a [Handler].
func New(opts Options) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Filename == "" {
		opts.Filename = "barcodes.pdf"
	}

	return &Handler{
		gen:      opts.Generator,
		pipeline: opts.Pipeline,
		renderer: opts.Renderer,
		company:  opts.Company,
		filename: opts.Filename,
		logger:   opts.Logger,
		tmpl:     tmpl,
	}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *Handler) Routes() []string {
	return []string{"/", "/generate", "/reset", "/barcode.png", "/barcodes.pdf", "/counters"}
}

// ServeHTTP dispatches on path and method.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type route struct {
		method string
		fn     http.HandlerFunc
	}
	routes := map[string]route{
		"/":             {http.MethodGet, h.index},
		"/generate":     {http.MethodPost, h.generate},
		"/reset":        {http.MethodPost, h.reset},
		"/barcode.png":  {http.MethodGet, h.barcode},
		"/barcodes.pdf": {http.MethodGet, h.document},
		"/counters":     {http.MethodGet, h.counters},
	}

	rt, ok := routes[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.Method != rt.method && !(rt.method == http.MethodGet && r.Method == http.MethodHead) {
		w.Header().Set("Allow", rt.method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rt.fn(w, r)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	batch, req := h.gen.Batch()
	form := models.Request{Company: h.company}
	if req != nil {
		form = *req
	}
	h.renderPage(w, http.StatusOK, form, batch, "")
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	req := models.Request{
		ProductCode: r.PostForm.Get("product"),
		Company:     r.PostForm.Get("company"),
		Count:       r.PostForm.Get("count"),
		Lot:         r.PostForm.Get("lot"),
		Date:        r.PostForm.Get("date"),
	}
	if q := strings.TrimSpace(r.PostForm.Get("quantity")); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			h.fail(w, r, req, fmt.Errorf("%w: quantity must be a whole number", shared.ErrValidation))
			return
		}
		req.Quantity = n
	}

	batch, err := h.gen.Generate(r.Context(), req)
	if err != nil {
		h.fail(w, r, req, err)
		return
	}

	if wantsJSON(r) {
		h.writeJSON(w, http.StatusCreated, batch)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	h.gen.Reset()
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) barcode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" || len(code) > maxCodeLength {
		http.Error(w, "code is required and must be at most 256 bytes", http.StatusBadRequest)
		return
	}

	data, err := h.renderer.RenderPNG(code)
	if err != nil {
		h.logger.Warn("render failed", "code", code, "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}

func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	batch, _ := h.gen.Batch()
	if batch == nil {
		http.Error(w, "No barcodes generated", http.StatusNotFound)
		return
	}

	doc, result, err := h.pipeline.RenderDocument(r.Context(), nil, batch)
	if err != nil {
		h.logger.Error("export failed", "batch", batch.ID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, failed := range result.Errors() {
		h.logger.Warn("barcode skipped", "code", failed.Code, "error", failed.Error)
	}

	disposition := "attachment"
	if r.URL.Query().Get("inline") != "" {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, h.filename))
	w.Write(doc)
}

func (h *Handler) counters(w http.ResponseWriter, r *http.Request) {
	products := h.gen.Products()
	views := make([]CounterView, 0, len(products))
	for _, p := range products {
		c, err := h.gen.Counter(r.Context(), p.Code)
		if err != nil {
			h.logger.Error("counter read failed", "product", p.Code, "error", err)
			http.Error(w, "Failed to read counters", http.StatusInternalServerError)
			return
		}
		views = append(views, CounterView{Code: p.Code, Name: p.Name, LastNumber: c.LastNumber, IssuedCount: c.IssuedCount})
	}
	h.writeJSON(w, http.StatusOK, views)
}

// fail maps generation errors onto a status and re-renders the form.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, req models.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrProductNotFound):
		status = http.StatusBadRequest
	default:
		h.logger.Error("generate failed", "product", req.ProductCode, "error", err)
	}

	if wantsJSON(r) {
		h.writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	batch, _ := h.gen.Batch()
	h.renderPage(w, status, req, batch, err.Error())
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, form models.Request, batch *models.Batch, errMsg string) {
	needs := map[string]bool{}
	for _, f := range h.gen.Format().Required() {
		needs[string(f)] = true
	}

	var buf bytes.Buffer
	err := h.tmpl.ExecuteTemplate(&buf, "index.html", pageData{
		Products: h.gen.Products(),
		Form:     form,
		Needs:    needs,
		Batch:    batch,
		Error:    errMsg,
		Filename: h.filename,
	})
	if err != nil {
		h.logger.Error("template failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
