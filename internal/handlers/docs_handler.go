package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
	"github.com/ternarybob/pursuit/internal/services/docs"
	"github.com/ternarybob/pursuit/internal/services/profiles"
)

// DocsHandler renders application documents for pipeline jobs
type DocsHandler struct {
	docs     *docs.Service
	profiles *profiles.Loader
	store    interfaces.PipelineStore
	logger   arbor.ILogger
}

func NewDocsHandler(service *docs.Service, loader *profiles.Loader, store interfaces.PipelineStore) *DocsHandler {
	return &DocsHandler{
		docs:     service,
		profiles: loader,
		store:    store,
		logger:   common.GetLogger(),
	}
}

type coverLetterRequest struct {
	JobID   string `json:"job_id"`
	Profile string `json:"profile,omitempty"`
	Body    string `json:"body"`
}

// CoverLetterHandler serves POST /api/docs/coverletter. The body text comes
// from the caller; the header block comes from the profile and the pipeline
// job named by job_id.
func (h *DocsHandler) CoverLetterHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var req coverLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" || req.Body == "" {
		WriteError(w, http.StatusBadRequest, "job_id and body required")
		return
	}

	job, err := h.store.GetByID(req.JobID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "job not found")
		return
	}

	profile, err := h.profiles.Load(req.Profile)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "profile not found")
		return
	}

	info := &models.JobInfo{
		Title:   job.Title,
		Company: job.Company,
		URL:     job.URL,
	}
	path, err := h.docs.RenderCoverLetter(profile, info, req.Body)
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", req.JobID).Msg("Cover letter render failed")
		WriteError(w, http.StatusInternalServerError, "failed to render cover letter")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"path":   path,
	})
}
