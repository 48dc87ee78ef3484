package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
)

// IngestTrigger starts an ingestion run; false means one is already active
type IngestTrigger interface {
	Trigger() bool
	Status() (running bool, lastRun time.Time, lastError string)
}

// IngestHandler exposes manual ingestion control
type IngestHandler struct {
	scheduler IngestTrigger
	logger    arbor.ILogger
}

func NewIngestHandler(scheduler IngestTrigger) *IngestHandler {
	return &IngestHandler{
		scheduler: scheduler,
		logger:    common.GetLogger(),
	}
}

// TriggerHandler serves POST /api/ingest/trigger
func (h *IngestHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	if !h.scheduler.Trigger() {
		WriteJSON(w, http.StatusConflict, map[string]string{
			"status":  "busy",
			"message": "ingestion run already in progress",
		})
		return
	}
	WriteStarted(w, "ingestion run started")
}

// StatusHandler serves GET /api/ingest/status
func (h *IngestHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	running, lastRun, lastError := h.scheduler.Status()
	resp := map[string]interface{}{
		"running": running,
	}
	if !lastRun.IsZero() {
		resp["last_run"] = lastRun
	}
	if lastError != "" {
		resp["last_error"] = lastError
	}
	WriteJSON(w, http.StatusOK, resp)
}
