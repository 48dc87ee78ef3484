package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/models"
)

// AutofillRunner executes one autofill session against an application URL
type AutofillRunner interface {
	RunSession(ctx context.Context, url, profile, jobID string) (*models.AutofillSession, error)
}

// AutofillHandler starts autofill sessions over HTTP
type AutofillHandler struct {
	runner AutofillRunner
	logger arbor.ILogger
}

func NewAutofillHandler(runner AutofillRunner) *AutofillHandler {
	return &AutofillHandler{
		runner: runner,
		logger: common.GetLogger(),
	}
}

type autofillRequest struct {
	URL     string `json:"url"`
	Profile string `json:"profile,omitempty"`
	JobID   string `json:"job_id,omitempty"`
}

// RunHandler serves POST /api/autofill/run. The session runs in the
// background; progress streams over the websocket and the final record lands
// in session storage.
func (h *AutofillHandler) RunHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var req autofillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		WriteError(w, http.StatusBadRequest, "url required")
		return
	}

	go func() {
		session, err := h.runner.RunSession(context.Background(), req.URL, req.Profile, req.JobID)
		if err != nil {
			h.logger.Error().Err(err).Str("url", req.URL).Msg("Autofill session failed")
			return
		}
		h.logger.Info().
			Str("session_id", session.ID).
			Int("filled", session.Filled).
			Int("verified", session.Verified).
			Msg("Autofill session completed")
	}()

	WriteStarted(w, "autofill session started")
}
