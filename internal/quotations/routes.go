package quotations

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/quotations", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Show)
		r.Put("/{id}", h.Update)

		r.Post("/{id}/submit", h.Submit)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)

		r.Get("/{id}/preview", h.Preview)
		r.Get("/{id}/export/pdf", h.ExportPDF)
		r.Get("/{id}/export/xlsx", h.ExportExcel)
		r.Post("/{id}/export", h.ExportAsync)
	})
}
