package activity

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/drawing-management/internal/auth"
	"github.com/frahmantamala/drawing-management/internal/transport"
	"github.com/frahmantamala/drawing-management/pkg/logger"
)

type ServiceAPI interface {
	Recent(ctx context.Context, actor *auth.User, limit int) ([]*ActivityLog, error)
	Stats(ctx context.Context, actor *auth.User) (*DashboardStats, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.Service.Stats(r.Context(), actor)
	if err != nil {
		h.Logger.Error("DashboardStats: service error", "error", err, "actor_id", actor.ID)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.Service.Recent(r.Context(), actor, limit)
	if err != nil {
		h.Logger.Error("RecentActivity: service error", "error", err, "actor_id", actor.ID)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, entries)
}
