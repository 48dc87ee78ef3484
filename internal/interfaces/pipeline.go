package interfaces

import (
	"errors"

	"github.com/ternarybob/pursuit/internal/models"
)

// ErrJobNotFound is returned by store operations targeting an unknown job id
var ErrJobNotFound = errors.New("job not found")

// UpdateStatusOptions carries the optional attachments of a status transition
type UpdateStatusOptions struct {
	Notes      string
	FolderPath string
	JDSummary  string
	Reason     string
}

// PipelineStore is the single authoritative store of jobs. All operations are
// atomic with respect to the backing file; implementations serialize access
// under one mutex.
type PipelineStore interface {
	Add(job models.Job, status models.JobStatus) (bool, error)
	AddBulk(jobs []models.Job, status models.JobStatus) (int, error)
	UpdateStatus(id string, status models.JobStatus, opts *UpdateStatusOptions) (*models.Job, error)
	UpdateLastSeen(id string) error
	UpdateLastSeenBulk(ids []string) error
	MarkMissing(activeIDs map[string]bool, thresholdDays int) ([]models.Job, error)

	GetAll() ([]models.Job, error)
	GetByStatus(status models.JobStatus) ([]models.Job, error)
	GetActive() ([]models.Job, error)
	GetArchive() ([]models.Job, error)
	GetByID(id string) (*models.Job, error)
	Exists(id string) (bool, error)
	Stats() (*models.PipelineStats, error)
	Remove(id string) (bool, error)

	IsRejected(atsJobID string) (bool, error)
	Unreject(atsJobID string) error
}
