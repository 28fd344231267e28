package selves

import (
	"errors"
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

// Generate reports every generation or storage failure as a 500 with its
// message; the web client shows it as-is.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	row, err := h.svc.Generate(r.Context(), auth.UserIDFromRequest(r), &req)
	if err != nil {
		if errors.Is(err, ErrUserMismatch) {
			slog.Warn("alternate self requested for another user",
				"requested", req.UserID,
				"requester", auth.UserIDFromRequest(r),
			)
			api.HandleError(w, api.ErrForbidden)
			return
		}
		slog.Error("generate-alternate-self", "user_id", req.UserID, "axis", req.Axis, "error", err)
		api.HandleError(w, api.NewInternalError(api.Message(err)))
		return
	}

	api.JSON(w, http.StatusOK, row)
}
