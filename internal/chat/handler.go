package chat

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lokah-app/lokah/internal/api"
	"github.com/lokah-app/lokah/internal/auth"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	resp, err := h.svc.Reply(r.Context(), auth.UserIDFromRequest(r), &req)
	if err != nil {
		slog.Error("chat-with-parallel-self", "conversation_id", req.ConversationID, "error", err)
		api.HandleError(w, api.FromGatewayError(err))
		return
	}

	api.JSON(w, http.StatusOK, resp)
}
