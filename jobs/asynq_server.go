package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
)

// Worker wraps the Asynq server processing export tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Logger      *slog.Logger
	Concurrency int
	Processor   *ExportProcessor
}

// NewWorker constructs a Worker instance. Concurrency defaults to 2: each
// PDF render holds a headless browser, so the worker stays deliberately
// narrow.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Processor == nil {
		return nil, errors.New("jobs: worker needs an export processor")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueExports: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeExport, cfg.Processor.Handle)

	return &Worker{server: srv, mux: mux, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("jobs: worker not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client submits export tasks to the queue. It satisfies the HTTP layer's
// ExportQueue dependency.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// Enqueue queues one export and returns the task id for status polling.
func (c *Client) Enqueue(ctx context.Context, quotationID int64, format string) (string, error) {
	task, err := NewExportTask(ExportPayload{QuotationID: quotationID, Format: format})
	if err != nil {
		return "", err
	}
	// Retention keeps finished tasks pollable for a day.
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueExports), asynq.Retention(24*time.Hour))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Handler exposes HTTP endpoints for job observability and task polling.
type Handler struct {
	inspector *asynq.Inspector
	store     *ArtifactStore
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints.
func NewHandler(inspector *asynq.Inspector, store *ArtifactStore, logger *slog.Logger) *Handler {
	return &Handler{inspector: inspector, store: store, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/tasks/{id}", h.taskStatus)
	r.Get("/tasks/{id}/download", h.download)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.inspector == nil {
		writeJSON(w, `{"queue":"`+QueueExports+`","pending":0}`)
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueExports)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, `{"queue":"`+info.Queue+`","pending":`+strconv.Itoa(int(info.Pending))+`}`)
}

func (h *Handler) taskStatus(w http.ResponseWriter, r *http.Request) {
	info, ok := h.task(w, r)
	if !ok {
		return
	}
	artifact := ""
	if len(info.Result) > 0 {
		artifact = string(info.Result)
	}
	writeJSON(w, `{"id":"`+info.ID+`","state":"`+info.State.String()+`","artifact":"`+artifact+`"}`)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	info, ok := h.task(w, r)
	if !ok {
		return
	}
	if len(info.Result) == 0 {
		http.Error(w, "export not finished", http.StatusConflict)
		return
	}
	path, err := h.store.Open(string(info.Result))
	if err != nil {
		http.Error(w, "artifact missing", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

func (h *Handler) task(w http.ResponseWriter, r *http.Request) (*asynq.TaskInfo, bool) {
	if h.inspector == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return nil, false
	}
	info, err := h.inspector.GetTaskInfo(QueueExports, chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "task not found", http.StatusNotFound)
		return nil, false
	}
	return info, true
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
