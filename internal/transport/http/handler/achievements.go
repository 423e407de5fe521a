package handler

import (
	"context"
	"net/http"

	"github.com/finpal/backend/internal/application/gamification"
	"github.com/finpal/backend/internal/domain"
	"github.com/finpal/backend/internal/transport/http/middleware"
)

type achievementCatalog interface {
	List(ctx context.Context) ([]domain.Achievement, error)
}

// AchievementHandler exposes the achievement catalog and per-user progress.
type AchievementHandler struct {
	catalog achievementCatalog
	gamify  gamification.Service
}

func NewAchievementHandler(catalog achievementCatalog, gamify gamification.Service) *AchievementHandler {
	return &AchievementHandler{catalog: catalog, gamify: gamify}
}

func (h *AchievementHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.catalog.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *AchievementHandler) MyProgress(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.gamify.Progress(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
