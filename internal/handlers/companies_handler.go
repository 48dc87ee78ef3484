package handlers

import (
	"net/http"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/models"
)

// StatusSource yields the per-company fetch statuses recorded by ingestion
type StatusSource interface {
	Statuses() (map[string]models.CompanyFetchStatus, error)
}

// CompaniesHandler serves the per-company ingestion status view
type CompaniesHandler struct {
	source StatusSource
	logger arbor.ILogger
}

func NewCompaniesHandler(source StatusSource) *CompaniesHandler {
	return &CompaniesHandler{
		source: source,
		logger: common.GetLogger(),
	}
}

// ListHandler returns the status of every company's last fetch, sorted by
// company name. The profile query parameter is accepted for UI compatibility;
// the status file covers a single profile's sources.
func (h *CompaniesHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	statuses, err := h.source.Statuses()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Company status read degraded")
		statuses = map[string]models.CompanyFetchStatus{}
	}
	companies := make([]models.CompanyFetchStatus, 0, len(statuses))
	for _, st := range statuses {
		companies = append(companies, st)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].Company < companies[j].Company })
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(companies),
		"companies": companies,
	})
}
