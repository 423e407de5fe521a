package handler

import (
	"net/http"

	"github.com/finpal/backend/internal/application/reports"
)

// ReportHandler exposes the scheduler-triggered weekly summary run.
type ReportHandler struct {
	svc reports.Service
}

func NewReportHandler(svc reports.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// RunWeekly kicks off the bulk weekly summary. The external scheduler calls
// this roughly weekly; the run is synchronous and reports its counts.
func (h *ReportHandler) RunWeekly(w http.ResponseWriter, r *http.Request) {
	sent, failed := h.svc.RunAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent, "failed": failed})
}
