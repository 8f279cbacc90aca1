package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quotadesk/quotadesk/internal/customers"
	"github.com/quotadesk/quotadesk/internal/products"
	"github.com/quotadesk/quotadesk/internal/quotations"
	"github.com/quotadesk/quotadesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	CustomersHandler  *customers.Handler
	ProductsHandler   *products.Handler
	QuotationsHandler *quotations.Handler
	JobsHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with the API surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.CustomersHandler.MountRoutes(r)
		params.ProductsHandler.MountRoutes(r)
		params.QuotationsHandler.MountRoutes(r)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
