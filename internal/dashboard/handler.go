package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staffdesk/staffdesk/internal/platform/httpx"
	"github.com/staffdesk/staffdesk/internal/shared"
)

// Handler serves the dashboard stats endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard/stats", h.stats)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.ActorID(r.Context()); !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute dashboard stats", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	httpx.JSON(w, http.StatusOK, stats)
}
