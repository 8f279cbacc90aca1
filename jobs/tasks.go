// Package jobs runs quotation exports in the background: the HTTP layer
// enqueues a task, the worker renders the file and stores it as an artifact
// the client later downloads.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/quotadesk/quotadesk/internal/document"
	"github.com/quotadesk/quotadesk/internal/export"
	"github.com/quotadesk/quotadesk/internal/pricing"
)

const (
	// QueueExports carries the export tasks; renders are slow so they get
	// their own queue.
	QueueExports = "exports"
	// TaskTypeExport renders one quotation to PDF or XLSX.
	TaskTypeExport = "quotation:export"
)

// ExportPayload identifies what to render.
type ExportPayload struct {
	QuotationID int64  `json:"quotation_id"`
	Format      string `json:"format"` // "pdf" or "xlsx"
}

// NewExportTask constructs the Asynq task for an export request.
func NewExportTask(payload ExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeExport, data, asynq.MaxRetry(3)), nil
}

// DocumentBuilder assembles the export view-model for a stored quotation.
type DocumentBuilder interface {
	BuildDocument(ctx context.Context, id int64) (*export.Document, error)
}

// ExportProcessor handles TaskTypeExport tasks.
type ExportProcessor struct {
	builder DocumentBuilder
	pdf     *export.PDFExporter
	excel   *export.ExcelExporter
	store   *ArtifactStore
	logger  *slog.Logger
}

func NewExportProcessor(
	builder DocumentBuilder,
	pdf *export.PDFExporter,
	excel *export.ExcelExporter,
	store *ArtifactStore,
	logger *slog.Logger,
) *ExportProcessor {
	return &ExportProcessor{builder: builder, pdf: pdf, excel: excel, store: store, logger: logger}
}

// Handle renders the requested file and persists it. Render failures are
// returned so Asynq retries the whole attempt from scratch; input errors
// skip retry since re-running cannot fix them.
func (p *ExportProcessor) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	doc, err := p.builder.BuildDocument(ctx, payload.QuotationID)
	if err != nil {
		var verr *pricing.ValidationError
		var cerr *document.ConfigError
		if errors.As(err, &verr) || errors.As(err, &cerr) {
			p.logger.Error("export input invalid", "quotation_id", payload.QuotationID, "error", err)
			return fmt.Errorf("build document: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("build document: %w", err)
	}

	var data []byte
	switch payload.Format {
	case "pdf":
		data, err = p.pdf.Export(ctx, doc)
	case "xlsx":
		data, err = p.excel.Export(ctx, doc)
	default:
		return asynq.SkipRetry
	}
	if err != nil {
		p.logger.Warn("export render failed, will retry",
			"quotation_id", payload.QuotationID, "format", payload.Format, "error", err)
		return fmt.Errorf("render %s: %w", payload.Format, err)
	}

	name := export.FileName(doc.Title, doc.RefID, doc.Version, payload.Format)
	path, err := p.store.Save(name, data)
	if err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}
	p.logger.Info("export completed",
		"quotation_id", payload.QuotationID, "format", payload.Format, "artifact", path)

	if _, err := t.ResultWriter().Write([]byte(path)); err != nil {
		return fmt.Errorf("record artifact path: %w", err)
	}
	return nil
}
