package reflection

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

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	refl, err := h.svc.Generate(r.Context(), auth.UserIDFromRequest(r), &req)
	if err != nil {
		slog.Error("generate-reflection", "error", err)
		api.HandleError(w, api.FromGatewayError(err))
		return
	}

	api.JSON(w, http.StatusOK, Response{Reflection: *refl})
}
