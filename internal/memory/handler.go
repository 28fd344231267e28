package memory

import (
	"log/slog"
	"net/http"

	"github.com/lokah-app/lokah/internal/api"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Extract answers 200 in every case, including unreadable bodies.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := api.DecodeJSON(r, &req); err != nil {
		api.JSON(w, http.StatusOK, Response{})
		return
	}

	api.JSON(w, http.StatusOK, Response{Memory: h.svc.Extract(r.Context(), req.MessageContent)})
}

// Skipped is the reply for requests turned away before Extract runs.
func (h *Handler) Skipped(w http.ResponseWriter, r *http.Request) {
	slog.Debug("extract-memory skipped", "path", r.URL.Path)
	api.JSON(w, http.StatusOK, Response{})
}
