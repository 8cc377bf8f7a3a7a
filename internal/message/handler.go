package message

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/auth"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/httpx"
)

// Handler exposes HTTP endpoints for messages.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreateRequest is the body of POST /messages. The sender is always the
// caller.
type CreateRequest struct {
	ToUsername string `json:"to_username" validate:"required,max=64"`
	Body       string `json:"body" validate:"required"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, r, h.logger, apperr.ErrUnauthenticated)
		return
	}
	var req CreateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	m, err := h.svc.Create(r.Context(), id.Username, req.ToUsername, req.Body)
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": m})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	d, err := h.svc.Get(r.Context(), id.Username, r.PathValue("id"))
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": d})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	m, err := h.svc.MarkRead(r.Context(), id.Username, r.PathValue("id"))
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": m})
}

func (h *Handler) ListFrom(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.ListFrom(r.Context(), r.PathValue("username"))
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (h *Handler) ListTo(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.ListTo(r.Context(), r.PathValue("username"))
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
