package quotations

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quotadesk/quotadesk/internal/export"
	"github.com/quotadesk/quotadesk/internal/platform/httpx"
)

// ExportQueue hands long-running export requests to the background worker.
type ExportQueue interface {
	Enqueue(ctx context.Context, quotationID int64, format string) (string, error)
}

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate

	pdf      *export.PDFExporter
	excel    *export.ExcelExporter
	renderer *export.HTMLRenderer
	queue    ExportQueue
}

func NewHandler(
	logger *slog.Logger,
	service *Service,
	validate *validator.Validate,
	pdf *export.PDFExporter,
	excel *export.ExcelExporter,
	renderer *export.HTMLRenderer,
	queue ExportQueue,
) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validate,
		pdf:      pdf,
		excel:    excel,
		renderer: renderer,
		queue:    queue,
	}
}

type listResponse struct {
	Quotations []QuotationSummary `json:"quotations"`
	Total      int                `json:"total"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListQuotationsRequest{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		st := Status(v)
		req.Status = &st
	}
	if v := r.URL.Query().Get("customer_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.CustomerID = &id
		}
	}
	req.DateFrom = queryDate(r, "date_from")
	req.DateTo = queryDate(r, "date_to")

	quotations, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list quotations failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Quotations: quotations, Total: total})
}

type showResponse struct {
	Quotation *Quotation     `json:"quotation"`
	Totals    TotalsResponse `json:"totals"`
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	totals, err := h.service.Totals(q)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, showResponse{Quotation: q, Totals: totals})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	q, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create quotation failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req UpdateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	q, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update quotation failed", "error", err, "id", id)
		h.respondWorkflowError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, func(ctx context.Context, id int64) (*Quotation, error) {
		return h.service.Submit(ctx, id)
	})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, func(ctx context.Context, id int64) (*Quotation, error) {
		return h.service.Approve(ctx, id)
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = httpx.DecodeJSON(r, &body)

	q, err := h.service.Reject(r.Context(), id, body.Reason)
	if err != nil {
		h.respondWorkflowError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Preview returns the rendered print-layout HTML so the client can show
// exactly what the PDF capture will rasterize.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	doc, err := h.service.BuildDocument(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	html, err := h.renderer.Render(doc)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	doc, err := h.service.BuildDocument(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data, err := h.pdf.Export(r.Context(), doc)
	if err != nil {
		h.logger.Error("pdf export failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.File(w, "application/pdf", export.FileName(doc.Title, doc.RefID, doc.Version, "pdf"), data)
}

func (h *Handler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	doc, err := h.service.BuildDocument(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data, err := h.excel.Export(r.Context(), doc)
	if err != nil {
		h.logger.Error("excel export failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.File(w,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		export.FileName(doc.Title, doc.RefID, doc.Version, "xlsx"), data)
}

// ExportAsync queues the export and returns the task id for polling.
func (h *Handler) ExportAsync(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "pdf" && format != "xlsx" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "format must be pdf or xlsx")
		return
	}
	if _, err := h.service.Get(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}

	taskID, err := h.queue.Enqueue(r.Context(), id, format)
	if err != nil {
		h.logger.Error("enqueue export failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

func (h *Handler) doTransition(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (*Quotation, error)) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	q, err := fn(r.Context(), id)
	if err != nil {
		h.respondWorkflowError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) respondWorkflowError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidStatus) {
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
		return
	}
	httpx.RespondError(w, err)
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quotation id")
		return 0, false
	}
	return id, true
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Quotation, bool) {
	id, ok := h.id(w, r)
	if !ok {
		return nil, false
	}
	q, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return nil, false
	}
	return q, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func queryDate(r *http.Request, key string) *time.Time {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}
