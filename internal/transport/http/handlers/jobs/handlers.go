package jobshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrpay/internal/platform/jobs"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

type Handler struct {
	Service *jobs.Service
}

func NewHandler(svc *jobs.Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/jobs/{jobID}", h.handleGet)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	run, err := h.Service.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	api.Success(w, run, reqID)
}
