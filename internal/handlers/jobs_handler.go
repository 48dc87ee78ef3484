package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
	"github.com/ternarybob/pursuit/internal/normalize"
)

// JobsHandler serves the scored job listing
type JobsHandler struct {
	store   interfaces.PipelineStore
	scoring *common.ScoringConfig
	nowFunc func() time.Time
	logger  arbor.ILogger
}

func NewJobsHandler(store interfaces.PipelineStore, scoring *common.ScoringConfig) *JobsHandler {
	return &JobsHandler{
		store:   store,
		scoring: scoring,
		nowFunc: time.Now,
		logger:  common.GetLogger(),
	}
}

// scoredJob carries the job plus its computed ranking score
type scoredJob struct {
	models.Job
	Score int `json:"score"`
}

// ListHandler returns jobs filtered by query parameters and sorted by score.
// A degraded store yields an empty listing, not a server error; the UI keeps
// rendering while the data files recover.
func (h *JobsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobs, err := h.store.GetAll()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Job listing degraded, returning empty set")
		WriteJSON(w, http.StatusOK, map[string]interface{}{"count": 0, "jobs": []scoredJob{}})
		return
	}

	f := parseJobFilter(r)
	minScore, _ := strconv.Atoi(r.URL.Query().Get("min_score"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	scored := make([]scoredJob, 0, len(jobs))
	for _, job := range jobs {
		if !f.match(&job, h.scoring) {
			continue
		}
		s := h.score(&job)
		if s < minScore {
			continue
		}
		scored = append(scored, scoredJob{Job: job, Score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(scored),
		"jobs":  scored,
	})
}

// jobFilter holds the parsed listing query parameters. The profile
// parameter is accepted for UI compatibility but the store holds a single
// profile's pipeline, so it never narrows the result.
type jobFilter struct {
	status           string
	ats              string
	role             string
	location         string
	company          string
	search           string
	states           []string
	city             string
	geoMode          string
	includeRemoteUSA bool
	activeOnly       bool
}

func parseJobFilter(r *http.Request) *jobFilter {
	q := r.URL.Query()
	f := &jobFilter{
		status:           q.Get("status"),
		ats:              q.Get("ats_filter"),
		role:             q.Get("role_filter"),
		location:         strings.ToLower(q.Get("location_filter")),
		company:          strings.ToLower(q.Get("company_filter")),
		search:           strings.ToLower(q.Get("search")),
		city:             q.Get("city"),
		geoMode:          q.Get("geo_mode"),
		includeRemoteUSA: q.Get("include_remote_usa") == "true",
		activeOnly:       q.Get("active") == "true",
	}
	if csv := q.Get("states"); csv != "" {
		for _, st := range strings.Split(csv, ",") {
			if st = strings.ToUpper(strings.TrimSpace(st)); st != "" {
				f.states = append(f.states, st)
			}
		}
	}
	return f
}

func (f *jobFilter) match(job *models.Job, scoring *common.ScoringConfig) bool {
	if f.status != "" && string(job.Status) != f.status {
		return false
	}
	if f.ats != "" && !strings.EqualFold(job.ATS, f.ats) {
		return false
	}
	if f.role != "" && job.RoleFamily != f.role {
		return false
	}
	if f.location != "" && !strings.Contains(strings.ToLower(job.Location), f.location) {
		return false
	}
	if f.company != "" && !strings.Contains(strings.ToLower(job.Company), f.company) {
		return false
	}
	if f.search != "" &&
		!strings.Contains(strings.ToLower(job.Title), f.search) &&
		!strings.Contains(strings.ToLower(job.Company), f.search) {
		return false
	}
	if len(f.states) > 0 && !f.matchStates(job) {
		return false
	}
	if f.city != "" && (job.LocationNorm == nil || !strings.EqualFold(job.LocationNorm.City, f.city)) {
		return false
	}
	if !f.matchGeoMode(job, scoring) {
		return false
	}
	if f.activeOnly && !job.IsActiveOnATS {
		return false
	}
	return true
}

// matchStates admits jobs located in any requested state; remote-USA jobs
// pass too when include_remote_usa is set, since they are workable from any
// of the requested states.
func (f *jobFilter) matchStates(job *models.Job) bool {
	if job.LocationNorm != nil {
		for _, have := range job.LocationNorm.States {
			for _, want := range f.states {
				if have == want {
					return true
				}
			}
		}
		if f.includeRemoteUSA && job.LocationNorm.Remote && job.LocationNorm.RemoteScope == "usa" {
			return true
		}
	}
	return false
}

// matchGeoMode filters on the derived geo bucket. The "<state>_priority"
// mode keeps in-state jobs (local and target-state buckets) and admits
// remote-USA jobs when include_remote_usa is set; an unrecognized mode is
// treated as "all".
func (f *jobFilter) matchGeoMode(job *models.Job, scoring *common.ScoringConfig) bool {
	switch f.geoMode {
	case "", "all":
		return true
	case "local_only":
		return job.GeoBucket == normalize.GeoLocal
	case "neighbor_only":
		return job.GeoBucket == normalize.GeoNeighbor
	case "remote_usa":
		return job.GeoBucket == normalize.GeoRemoteUSA
	}
	target := strings.ToLower(scoring.TargetState)
	if strings.TrimSuffix(f.geoMode, "_priority") == target {
		if job.GeoBucket == normalize.GeoLocal || job.GeoBucket == target {
			return true
		}
		return f.includeRemoteUSA && job.GeoBucket == normalize.GeoRemoteUSA
	}
	return true
}

// score ranks a job: geo bucket base, company priority, home-state and
// local-city bonuses, minus a staleness penalty on the source timestamp
func (h *JobsHandler) score(job *models.Job) int {
	s := job.GeoScore + job.CompanyPriority

	if job.HQState != "" && strings.EqualFold(job.HQState, h.scoring.TargetState) {
		s += h.scoring.StateBonus
	}
	if job.LocationNorm != nil && job.LocationNorm.City != "" {
		for _, city := range h.scoring.LocalCities {
			if strings.EqualFold(city, job.LocationNorm.City) {
				s += h.scoring.CityBonus
				break
			}
		}
	}

	if job.UpdatedAt != "" {
		if updated, err := time.Parse(time.RFC3339, job.UpdatedAt); err == nil {
			age := h.nowFunc().Sub(updated)
			switch {
			case age > 60*24*time.Hour:
				s -= 20
			case age > 30*24*time.Hour:
				s -= 10
			}
		}
	}
	return s
}
