package handler

import (
	"encoding/json"
	"net/http"

	"github.com/finpal/backend/internal/application/budget"
	"github.com/finpal/backend/internal/application/events"
	"github.com/finpal/backend/internal/domain"
	"github.com/finpal/backend/internal/pkg/validate"
	"github.com/finpal/backend/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// BudgetHandler handles budget CRUD. Creation feeds the event pipeline for
// the budget-planner achievement.
type BudgetHandler struct {
	svc      budget.Service
	pipeline *events.Pipeline
}

func NewBudgetHandler(svc budget.Service, pipeline *events.Pipeline) *BudgetHandler {
	return &BudgetHandler{svc: svc, pipeline: pipeline}
}

func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}

	h.pipeline.BudgetCreated(events.BudgetCreated{UserID: b.UserID})

	writeJSON(w, http.StatusCreated, b)
}

func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	budgets, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "budget deleted"})
}
