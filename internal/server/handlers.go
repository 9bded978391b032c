package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Sairaj-wayal-20/ATS-sys/internal/document"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/prompt"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/report"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/screening"
)

const (
	fieldFiles = "uploaded_files"

	contentTypeJSON = "application/json"
	contentTypePDF  = "application/pdf"
	contentTypeHTML = "text/html; charset=utf-8"
)

//go:embed templates/index.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

var errBadRequest = errors.New("bad request")

// DocumentRenderer turns response text into a PDF.
type DocumentRenderer interface {
	Render(text string) ([]byte, error)
}

type Handler struct {
	runner    screening.Runner
	reports   DocumentRenderer
	logger    *zap.Logger
	maxUpload int64
}

func NewHandler(runner screening.Runner, reports DocumentRenderer, logger *zap.Logger, maxUploadBytes int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadMB << 20
	}

	return &Handler{
		runner:    runner,
		reports:   reports,
		logger:    logger,
		maxUpload: maxUploadBytes,
	}
}

type variantOption struct {
	Key      string
	Label    string
	Selected bool
}

type resultView struct {
	screening.Result
	Index int
}

type pageData struct {
	JobDescription string
	Variants       []variantOption
	Results        []resultView
	// NamedDownloads names exported PDFs after the candidate instead of the position.
	NamedDownloads bool
	Error          string
}

func newPageData(selected prompt.Variant) pageData {
	options := make([]variantOption, 0, len(prompt.Variants()))
	for _, v := range prompt.Variants() {
		options = append(options, variantOption{Key: v.Key(), Label: v.Label(), Selected: v == selected})
	}
	return pageData{Variants: options}
}

// Index renders the empty form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, newPageData(prompt.Summary))
}

// Evaluate runs the form submission and renders the responses in the page.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	batch, err := h.readBatch(w, r)
	if err != nil {
		data := newPageData(batch.Variant)
		data.JobDescription = batch.JobDescription
		data.Error = displayError(err)
		h.renderPage(w, statusFor(err), data)
		return
	}

	data := newPageData(batch.Variant)
	data.JobDescription = batch.JobDescription
	data.NamedDownloads = batch.Variant.ProducesDocument()

	results, err := h.runner.Run(r.Context(), batch)
	if err != nil {
		h.logger.Warn("evaluation failed", zap.Error(err))
		data.Error = displayError(err)
		h.renderPage(w, statusFor(err), data)
		return
	}

	for i, result := range results {
		data.Results = append(data.Results, resultView{Result: result, Index: i})
	}

	h.renderPage(w, http.StatusOK, data)
}

type evaluationResponse struct {
	Results []screening.Result `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// EvaluateAPI runs the same submission as Evaluate and answers with JSON.
func (h *Handler) EvaluateAPI(w http.ResponseWriter, r *http.Request) {
	batch, err := h.readBatch(w, r)
	if err != nil {
		h.writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	results, err := h.runner.Run(r.Context(), batch)
	if err != nil {
		h.logger.Warn("evaluation failed", zap.Error(err))
		h.writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, evaluationResponse{Results: results})
}

// DownloadPDF renders response_text as a PDF attachment.
func (h *Handler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		http.Error(w, "invalid response index", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	var form downloadForm
	if err := decodeForm(r.Form, &form); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(form.ResponseText) == "" {
		http.Error(w, "response_text is required", http.StatusBadRequest)
		return
	}

	label := strings.TrimSpace(form.Name)
	if label == "" {
		label = strconv.Itoa(index + 1)
	}

	data, err := h.reports.Render(form.ResponseText)
	if err != nil {
		h.logger.Error("render pdf failed", zap.Int("index", index), zap.Error(err))
		http.Error(w, "failed to render pdf", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypePDF)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(label)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("write pdf response", zap.Error(err))
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// readBatch parses the multipart form. The returned batch carries whatever was read even on
// error so the page can be re-rendered with the user's input.
func (h *Handler) readBatch(w http.ResponseWriter, r *http.Request) (screening.Batch, error) {
	batch := screening.Batch{Variant: prompt.Summary}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return batch, fmt.Errorf("%w: parse upload: %v", errBadRequest, err)
	}

	var form evaluationForm
	if err := decodeForm(r.MultipartForm.Value, &form); err != nil {
		return batch, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	batch.JobDescription = form.JobDescription

	variant, err := prompt.ParseVariant(form.PromptType)
	if err != nil {
		return batch, err
	}
	batch.Variant = variant

	for _, header := range r.MultipartForm.File[fieldFiles] {
		data, err := readUpload(header)
		if err != nil {
			return batch, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		batch.Resumes = append(batch.Resumes, screening.Submission{FileName: header.Filename, Data: data})
	}

	return batch, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", header.Filename, err)
	}
	return data, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, document.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errBadRequest),
		errors.Is(err, prompt.ErrUnknownVariant),
		errors.Is(err, screening.ErrNoResumes):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func displayError(err error) string {
	if errors.Is(err, screening.ErrNoResumes) {
		return screening.NoResumesMessage
	}
	return err.Error()
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		h.logger.Error("render page", zap.Error(err))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("encode json response", zap.Error(err))
	}
}
