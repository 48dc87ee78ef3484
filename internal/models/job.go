package models

import (
	"time"
)

// JobStatus represents the pipeline state of a job posting
type JobStatus string

const (
	JobStatusNew       JobStatus = "new"
	JobStatusApplied   JobStatus = "applied"
	JobStatusInterview JobStatus = "interview"
	JobStatusOffer     JobStatus = "offer"
	JobStatusRejected  JobStatus = "rejected"
	JobStatusWithdrawn JobStatus = "withdrawn"
	JobStatusClosed    JobStatus = "closed"
	JobStatusExcluded  JobStatus = "excluded"
)

// ValidStatuses lists every status the pipeline accepts
var ValidStatuses = []JobStatus{
	JobStatusNew, JobStatusApplied, JobStatusInterview, JobStatusOffer,
	JobStatusRejected, JobStatusWithdrawn, JobStatusClosed, JobStatusExcluded,
}

// IsValid reports whether s is one of the allowed statuses
func (s JobStatus) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsSkipStatus reports whether a status records user dismissal.
// Entering one of these statuses adds the job's ATS id to the rejection
// memory; leaving one removes it.
func (s JobStatus) IsSkipStatus() bool {
	return s == JobStatusRejected || s == JobStatusExcluded || s == JobStatusWithdrawn
}

// StatusEvent is one entry in a job's append-only status history
type StatusEvent struct {
	Status    JobStatus `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

// Job represents a single job posting tracked through the pipeline.
//
// Identity is the composite ID "<ats>_<ats_job_id>" which is stable across
// ingestion runs. Source timestamps (FirstPublished, UpdatedAt) come from the
// ATS; FirstSeen/AddedToPipeline/LastSeen are stamped from the system clock by
// the pipeline store.
type Job struct {
	ID       string `json:"id"`
	ATSJobID string `json:"ats_job_id"`
	ATS      string `json:"ats"` // parser tag: greenhouse, lever, workday, ashby, smartrecruiters
	Company  string `json:"company"`
	Title    string `json:"title"`

	Location     string              `json:"location"`
	LocationNorm *NormalizedLocation `json:"location_norm,omitempty"`
	Department   string              `json:"department"`
	URL          string              `json:"url"`

	// Source timestamps as reported by the ATS (ISO-8601 strings, empty when
	// the ATS does not publish them). Kept as strings for file compatibility.
	FirstPublished string `json:"first_published"`
	UpdatedAt      string `json:"updated_at"`

	Status        JobStatus     `json:"status"`
	StatusHistory []StatusEvent `json:"status_history"`

	FirstSeen       time.Time `json:"first_seen"`
	AddedToPipeline time.Time `json:"added_to_pipeline"`
	LastSeen        time.Time `json:"last_seen"`

	IsActiveOnATS  bool `json:"is_active_on_ats"`
	NeedsAttention bool `json:"needs_attention"`

	Notes      string `json:"notes,omitempty"`
	FolderPath string `json:"folder_path,omitempty"`
	JDSummary  string `json:"jd_summary,omitempty"`

	// Annotations attached at ingestion time from source configuration
	Industry        string   `json:"industry,omitempty"`
	CompanyPriority int      `json:"company_priority,omitempty"`
	HQState         string   `json:"hq_state,omitempty"`
	Tags            []string `json:"tags,omitempty"`

	// Derived classification; recomputed on ingestion, not authoritative
	RoleFamily     string  `json:"role_family,omitempty"`
	RoleConfidence float64 `json:"role_confidence,omitempty"`
	GeoBucket      string  `json:"geo_bucket,omitempty"`
	GeoScore       int     `json:"geo_score,omitempty"`
}

// CurrentStatus returns the status of the last history entry, or empty when
// the history has never been initialized.
func (j *Job) CurrentStatus() JobStatus {
	if len(j.StatusHistory) == 0 {
		return ""
	}
	return j.StatusHistory[len(j.StatusHistory)-1].Status
}

// RejectedJob is one entry in the rejection memory, keyed by ats_job_id
type RejectedJob struct {
	Title   string    `json:"title"`
	Company string    `json:"company"`
	Reason  string    `json:"reason"`
	Date    time.Time `json:"date"`
}

// PipelineStats summarizes the store contents for the stats endpoint
type PipelineStats struct {
	Total          int               `json:"total"`
	ByStatus       map[JobStatus]int `json:"by_status"`
	ActiveOnATS    int               `json:"active_on_ats"`
	NeedsAttention int               `json:"needs_attention"`
	Rejected       int               `json:"rejected_memory"`
}

// NormalizedLocation is the structured form of a free-text location
type NormalizedLocation struct {
	Raw         string   `json:"raw"`
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`      // 2-letter code, alphabetically first for multi-state
	StateFull   string   `json:"state_full,omitempty"` // full state name for State
	States      []string `json:"states,omitempty"`     // all detected 2-letter codes
	Remote      bool     `json:"remote"`
	RemoteScope string   `json:"remote_scope,omitempty"` // "usa", "global", or empty
	NonUS       bool     `json:"non_us,omitempty"`
}
