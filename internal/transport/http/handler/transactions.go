package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/finpal/backend/internal/application/events"
	"github.com/finpal/backend/internal/application/transaction"
	"github.com/finpal/backend/internal/domain"
	"github.com/finpal/backend/internal/pkg/validate"
	"github.com/finpal/backend/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// TransactionHandler handles transaction CRUD. Creation feeds the event
// pipeline: alerts and gamification run off the request path.
type TransactionHandler struct {
	svc      transaction.Service
	pipeline *events.Pipeline
}

func NewTransactionHandler(svc transaction.Service, pipeline *events.Pipeline) *TransactionHandler {
	return &TransactionHandler{svc: svc, pipeline: pipeline}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}

	h.pipeline.TransactionCreated(events.TransactionCreated{
		UserID:   t.UserID,
		Amount:   t.Amount,
		Category: t.Category,
		Type:     t.Type,
	})

	writeJSON(w, http.StatusCreated, t)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txs, err := h.svc.List(r.Context(), claims.UserID, limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "transaction deleted"})
}
