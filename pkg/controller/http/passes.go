package http

import (
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
	"github.com/digione/xnatsync/pkg/domain/types"
)

// PassHandler serves the pass control endpoints
type PassHandler struct {
	listener interfaces.ListenerUseCase
}

// NewPassHandler creates a PassHandler
func NewPassHandler(listener interfaces.ListenerUseCase) *PassHandler {
	return &PassHandler{listener: listener}
}

// Last returns the report of the latest finished pass
func (h *PassHandler) Last(w http.ResponseWriter, r *http.Request) {
	report := h.listener.LastReport()
	if report == nil {
		writeError(w, r, goerr.New("no pass has finished yet"), http.StatusNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// Trigger starts a pass in the background
func (h *PassHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.From(r.Context())

	if _, err := h.listener.Trigger(r.Context()); err != nil {
		if goerr.HasTag(err, types.ErrTagPassInProgress) {
			writeError(w, r, err, http.StatusConflict)
			return
		}
		logger.Error("Failed to trigger pass", "error", err)
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	logger.Info("Pass triggered")
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}
