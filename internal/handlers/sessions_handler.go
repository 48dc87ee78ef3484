package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/models"
)

// SessionSource lists persisted autofill session records
type SessionSource interface {
	ListSessions(limit int) ([]models.AutofillSession, error)
	GetSession(id string) (*models.AutofillSession, error)
}

// AuditSource lists the oracle calls recorded for a session
type AuditSource interface {
	ListAudits(sessionID string, limit int) ([]models.OracleAudit, error)
}

// SessionsHandler serves the autofill audit trail
type SessionsHandler struct {
	sessions SessionSource
	audits   AuditSource
	logger   arbor.ILogger
}

func NewSessionsHandler(sessions SessionSource, audits AuditSource) *SessionsHandler {
	return &SessionsHandler{
		sessions: sessions,
		audits:   audits,
		logger:   common.GetLogger(),
	}
}

// ListHandler serves GET /api/autofill/sessions
func (h *SessionsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	sessions, err := h.sessions.ListSessions(limit)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Session listing degraded")
		sessions = []models.AutofillSession{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

// GetHandler serves GET /api/autofill/session/{id}: the session record plus
// the oracle calls it made
func (h *SessionsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/autofill/session/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "session id required")
		return
	}
	session, err := h.sessions.GetSession(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	resp := map[string]interface{}{"session": session}
	if h.audits != nil {
		if audits, err := h.audits.ListAudits(id, 200); err == nil {
			resp["oracle_audits"] = audits
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}
