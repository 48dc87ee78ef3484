package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

// PipelineHandler exposes the pipeline store over HTTP
type PipelineHandler struct {
	store  interfaces.PipelineStore
	logger arbor.ILogger
}

func NewPipelineHandler(store interfaces.PipelineStore) *PipelineHandler {
	return &PipelineHandler{
		store:  store,
		logger: common.GetLogger(),
	}
}

// StatsHandler returns pipeline summary counts
func (h *PipelineHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	stats, err := h.store.Stats()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Stats read degraded")
		WriteJSON(w, http.StatusOK, &models.PipelineStats{ByStatus: map[models.JobStatus]int{}})
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// ListHandler serves /api/pipeline/{all|new|active|archive}
func (h *PipelineHandler) ListHandler(view string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !RequireMethod(w, r, "GET") {
			return
		}
		var jobs []models.Job
		var err error
		switch view {
		case "new":
			jobs, err = h.store.GetByStatus(models.JobStatusNew)
		case "active":
			jobs, err = h.store.GetActive()
		case "archive":
			jobs, err = h.store.GetArchive()
		default:
			jobs, err = h.store.GetAll()
		}
		if err != nil {
			h.logger.Warn().Err(err).Str("view", view).Msg("Pipeline listing degraded")
			jobs = []models.Job{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"count": len(jobs),
			"jobs":  jobs,
		})
	}
}

// JobHandler serves GET /api/pipeline/job/{id}
func (h *PipelineHandler) JobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api"), "/pipeline/job/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "job id required")
		return
	}
	job, err := h.store.GetByID(id)
	if err != nil {
		if errors.Is(err, interfaces.ErrJobNotFound) {
			WriteError(w, http.StatusNotFound, "job not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

type addRequest struct {
	Job    models.Job `json:"job"`
	Status string     `json:"status,omitempty"`
}

// AddHandler serves POST /api/pipeline/add
func (h *PipelineHandler) AddHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Job.ID == "" {
		WriteError(w, http.StatusBadRequest, "job id required")
		return
	}
	status := models.JobStatusNew
	if req.Status != "" {
		status = models.JobStatus(req.Status)
		if !status.IsValid() {
			WriteError(w, http.StatusBadRequest, "invalid status: "+req.Status)
			return
		}
	}
	added, err := h.store.Add(req.Job, status)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"added":  added,
	})
}

type statusRequest struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	Notes      string `json:"notes,omitempty"`
	FolderPath string `json:"folder_path,omitempty"`
	JDSummary  string `json:"jd_summary,omitempty"`
}

// StatusHandler serves POST /api/pipeline/status
func (h *PipelineHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	status := models.JobStatus(req.Status)
	if !status.IsValid() {
		WriteError(w, http.StatusBadRequest, "invalid status: "+req.Status)
		return
	}
	if req.JobID == "" {
		WriteError(w, http.StatusBadRequest, "job_id required")
		return
	}
	job, err := h.store.UpdateStatus(req.JobID, status, &interfaces.UpdateStatusOptions{
		Reason:     req.Reason,
		Notes:      req.Notes,
		FolderPath: req.FolderPath,
		JDSummary:  req.JDSummary,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrJobNotFound) {
			WriteError(w, http.StatusNotFound, "job not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// RemoveHandler serves DELETE /api/pipeline/remove/{id}
func (h *PipelineHandler) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api"), "/pipeline/remove/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "job id required")
		return
	}
	removed, err := h.store.Remove(id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		WriteError(w, http.StatusNotFound, "job not found")
		return
	}
	WriteSuccess(w, "job removed")
}

type unrejectRequest struct {
	ATSJobID string `json:"ats_job_id"`
}

// UnrejectHandler serves POST /api/pipeline/unreject, clearing the rejection
// memory so the next ingestion run may re-add the posting
func (h *PipelineHandler) UnrejectHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var req unrejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ATSJobID == "" {
		WriteError(w, http.StatusBadRequest, "ats_job_id required")
		return
	}
	if err := h.store.Unreject(req.ATSJobID); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteSuccess(w, "rejection memory cleared")
}
