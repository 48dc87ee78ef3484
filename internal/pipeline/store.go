package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
	"github.com/ternarybob/pursuit/internal/storage/kernel"
)

const (
	jobsFile     = "jobs_new.json"
	rejectedFile = "rejected_jobs.json"
)

// Store is the authoritative pipeline store. Every operation loads the
// backing files, mutates, and saves, all under one mutex; callers never see a
// torn state. The nowFunc seam exists for sweeper tests.
type Store struct {
	mu           sync.Mutex
	jobsPath     string
	rejectedPath string
	config       *common.PipelineConfig
	logger       arbor.ILogger
	nowFunc      func() time.Time
}

var _ interfaces.PipelineStore = (*Store)(nil)

// NewStore creates a pipeline store rooted at dataDir
func NewStore(dataDir string, config *common.PipelineConfig, logger arbor.ILogger) *Store {
	return &Store{
		jobsPath:     filepath.Join(dataDir, jobsFile),
		rejectedPath: filepath.Join(dataDir, rejectedFile),
		config:       config,
		logger:       logger,
		nowFunc:      time.Now,
	}
}

func (s *Store) loadJobs() ([]models.Job, error) {
	jobs := []models.Job{}
	if err := kernel.Load(s.jobsPath, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) loadRejected() (map[string]models.RejectedJob, error) {
	rejected := map[string]models.RejectedJob{}
	if err := kernel.Load(s.rejectedPath, &rejected); err != nil {
		return nil, err
	}
	return rejected, nil
}

// stamp initializes a job being admitted to the pipeline
func (s *Store) stamp(job *models.Job, status models.JobStatus, now time.Time) {
	job.Status = status
	job.StatusHistory = append(job.StatusHistory, models.StatusEvent{Status: status, Timestamp: now})
	job.FirstSeen = now
	job.AddedToPipeline = now
	job.LastSeen = now
	job.IsActiveOnATS = true
}

// Add inserts one job. Returns false without error when the id already exists
// or the ats_job_id is in the rejection memory.
func (s *Store) Add(job models.Job, status models.JobStatus) (bool, error) {
	n, err := s.AddBulk([]models.Job{job}, status)
	return n == 1, err
}

// AddBulk inserts jobs in one load-modify-save, deduping against existing ids
// and the rejection memory. Returns the number actually added.
func (s *Store) AddBulk(jobs []models.Job, status models.JobStatus) (int, error) {
	if status == "" {
		status = models.JobStatusNew
	}
	if !status.IsValid() {
		return 0, fmt.Errorf("invalid status: %s", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadJobs()
	if err != nil {
		return 0, err
	}
	rejected, err := s.loadRejected()
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, j := range existing {
		seen[j.ID] = true
	}

	now := s.nowFunc()
	added := 0
	for _, job := range jobs {
		if job.ID == "" || seen[job.ID] {
			continue
		}
		if _, isRejected := rejected[job.ATSJobID]; isRejected {
			s.logger.Debug().
				Str("id", job.ID).
				Str("company", job.Company).
				Msg("Skipping job in rejection memory")
			continue
		}
		s.stamp(&job, status, now)
		if status.IsSkipStatus() {
			rejected[job.ATSJobID] = models.RejectedJob{
				Title:   job.Title,
				Company: job.Company,
				Reason:  "added as " + string(status),
				Date:    now,
			}
		}
		existing = append(existing, job)
		seen[job.ID] = true
		added++
	}

	if added == 0 {
		return 0, nil
	}

	if err := kernel.Save(s.jobsPath, existing); err != nil {
		return 0, err
	}
	if err := kernel.Save(s.rejectedPath, rejected); err != nil {
		return 0, err
	}

	s.logger.Info().
		Int("added", added).
		Int("offered", len(jobs)).
		Msg("Jobs added to pipeline")
	return added, nil
}

// UpdateStatus appends a transition to the job's history. Entering a skip
// status records the job in the rejection memory; leaving one removes it.
func (s *Store) UpdateStatus(id string, status models.JobStatus, opts *interfaces.UpdateStatusOptions) (*models.Job, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	if opts == nil {
		opts = &interfaces.UpdateStatusOptions{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transition(id, status, opts, false)
}

// transition applies one status change. Caller holds the mutex. fromSweeper
// gates the un-rejection side effect behind the SweeperUnrejects policy.
func (s *Store) transition(id string, status models.JobStatus, opts *interfaces.UpdateStatusOptions, fromSweeper bool) (*models.Job, error) {
	jobs, err := s.loadJobs()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range jobs {
		if jobs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, interfaces.ErrJobNotFound
	}

	rejected, err := s.loadRejected()
	if err != nil {
		return nil, err
	}

	job := &jobs[idx]
	prev := job.Status
	now := s.nowFunc()

	job.Status = status
	job.StatusHistory = append(job.StatusHistory, models.StatusEvent{
		Status:    status,
		Timestamp: now,
		Reason:    opts.Reason,
	})
	if opts.Notes != "" {
		job.Notes = opts.Notes
	}
	if opts.FolderPath != "" {
		job.FolderPath = opts.FolderPath
	}
	if opts.JDSummary != "" {
		job.JDSummary = opts.JDSummary
	}

	rejectedDirty := false
	if status.IsSkipStatus() {
		reason := opts.Reason
		if reason == "" {
			reason = string(status)
		}
		rejected[job.ATSJobID] = models.RejectedJob{
			Title:   job.Title,
			Company: job.Company,
			Reason:  reason,
			Date:    now,
		}
		rejectedDirty = true
	} else if prev.IsSkipStatus() {
		// Transition out of a skip status un-rejects. Sweeper-induced
		// transitions only do so when the policy allows it.
		if !fromSweeper || s.config.SweeperUnrejects {
			if _, ok := rejected[job.ATSJobID]; ok {
				delete(rejected, job.ATSJobID)
				rejectedDirty = true
			}
		}
	}

	if fromSweeper {
		job.NeedsAttention = true
		job.IsActiveOnATS = false
	} else {
		// A user transition is an acknowledgment
		job.NeedsAttention = false
	}

	if err := kernel.Save(s.jobsPath, jobs); err != nil {
		return nil, err
	}
	if rejectedDirty {
		if err := kernel.Save(s.rejectedPath, rejected); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("id", id).
		Str("from", string(prev)).
		Str("to", string(status)).
		Msg("Job status updated")

	result := *job
	return &result, nil
}

// UpdateLastSeen marks one job as observed on its ATS now
func (s *Store) UpdateLastSeen(id string) error {
	return s.UpdateLastSeenBulk([]string{id})
}

// UpdateLastSeenBulk marks the given jobs as observed on their ATS now.
// last_seen only moves forward. Unknown ids are ignored.
func (s *Store) UpdateLastSeenBulk(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadJobs()
	if err != nil {
		return err
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	now := s.nowFunc()
	updated := 0
	for i := range jobs {
		if !want[jobs[i].ID] {
			continue
		}
		if now.After(jobs[i].LastSeen) {
			jobs[i].LastSeen = now
		}
		jobs[i].IsActiveOnATS = true
		updated++
	}

	if updated == 0 {
		return nil
	}
	return kernel.Save(s.jobsPath, jobs)
}

// MarkMissing closes applied/interview jobs that have not been observed for
// thresholdDays. Jobs outside activeIDs lose their active flag regardless of
// status. Returns the jobs that were flipped and now need attention.
func (s *Store) MarkMissing(activeIDs map[string]bool, thresholdDays int) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadJobs()
	if err != nil {
		return nil, err
	}

	now := s.nowFunc()
	dirty := false
	var flagged []string

	for i := range jobs {
		if activeIDs[jobs[i].ID] {
			continue
		}
		if jobs[i].IsActiveOnATS {
			jobs[i].IsActiveOnATS = false
			dirty = true
		}
		if jobs[i].Status != models.JobStatusApplied && jobs[i].Status != models.JobStatusInterview {
			continue
		}
		if int(now.Sub(jobs[i].LastSeen).Hours()/24) < thresholdDays {
			continue
		}
		flagged = append(flagged, jobs[i].ID)
	}

	if dirty {
		if err := kernel.Save(s.jobsPath, jobs); err != nil {
			return nil, err
		}
	}

	var needAttention []models.Job
	for _, id := range flagged {
		// Recompute days per job for the history reason
		var days int
		for i := range jobs {
			if jobs[i].ID == id {
				days = int(now.Sub(jobs[i].LastSeen).Hours() / 24)
				break
			}
		}
		job, err := s.transition(id, models.JobStatusClosed, &interfaces.UpdateStatusOptions{
			Reason: fmt.Sprintf("Not seen on ATS for %d days", days),
		}, true)
		if err != nil {
			return nil, err
		}
		s.logger.Warn().
			Str("id", id).
			Str("company", job.Company).
			Int("days", days).
			Msg("Job disappeared from ATS, closed")
		needAttention = append(needAttention, *job)
	}

	return needAttention, nil
}

// GetAll returns every job in the store
func (s *Store) GetAll() ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadJobs()
}

// GetByStatus returns jobs with the given current status
func (s *Store) GetByStatus(status models.JobStatus) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadJobs()
	if err != nil {
		return nil, err
	}
	out := []models.Job{}
	for _, j := range jobs {
		if j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

// GetActive returns jobs still moving through the pipeline
func (s *Store) GetActive() ([]models.Job, error) {
	return s.filter(func(j models.Job) bool {
		switch j.Status {
		case models.JobStatusNew, models.JobStatusApplied, models.JobStatusInterview, models.JobStatusOffer:
			return true
		}
		return false
	})
}

// GetArchive returns jobs in terminal statuses
func (s *Store) GetArchive() ([]models.Job, error) {
	return s.filter(func(j models.Job) bool {
		switch j.Status {
		case models.JobStatusRejected, models.JobStatusWithdrawn, models.JobStatusClosed, models.JobStatusExcluded:
			return true
		}
		return false
	})
}

func (s *Store) filter(keep func(models.Job) bool) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadJobs()
	if err != nil {
		return nil, err
	}
	out := []models.Job{}
	for _, j := range jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	return out, nil
}

// GetByID returns one job, or ErrJobNotFound
func (s *Store) GetByID(id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadJobs()
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			job := jobs[i]
			return &job, nil
		}
	}
	return nil, interfaces.ErrJobNotFound
}

// Exists reports whether a job id is present
func (s *Store) Exists(id string) (bool, error) {
	_, err := s.GetByID(id)
	if err == interfaces.ErrJobNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Stats summarizes the store
func (s *Store) Stats() (*models.PipelineStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadJobs()
	if err != nil {
		return nil, err
	}
	rejected, err := s.loadRejected()
	if err != nil {
		return nil, err
	}

	stats := &models.PipelineStats{
		Total:    len(jobs),
		ByStatus: map[models.JobStatus]int{},
		Rejected: len(rejected),
	}
	for _, j := range jobs {
		stats.ByStatus[j.Status]++
		if j.IsActiveOnATS {
			stats.ActiveOnATS++
		}
		if j.NeedsAttention {
			stats.NeedsAttention++
		}
	}
	return stats, nil
}

// Remove deletes a job entirely. Returns false when the id is unknown.
// The rejection memory is untouched: removal is not un-rejection.
func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadJobs()
	if err != nil {
		return false, err
	}

	idx := -1
	for i := range jobs {
		if jobs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	jobs = append(jobs[:idx], jobs[idx+1:]...)
	if err := kernel.Save(s.jobsPath, jobs); err != nil {
		return false, err
	}
	return true, nil
}

// IsRejected reports whether an ats_job_id is in the rejection memory
func (s *Store) IsRejected(atsJobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rejected, err := s.loadRejected()
	if err != nil {
		return false, err
	}
	_, ok := rejected[atsJobID]
	return ok, nil
}

// Unreject removes an ats_job_id from the rejection memory
func (s *Store) Unreject(atsJobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rejected, err := s.loadRejected()
	if err != nil {
		return err
	}
	if _, ok := rejected[atsJobID]; !ok {
		return nil
	}
	delete(rejected, atsJobID)
	return kernel.Save(s.rejectedPath, rejected)
}

// RejectedEntries returns the rejection memory sorted by most recent first
func (s *Store) RejectedEntries() (map[string]models.RejectedJob, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rejected, err := s.loadRejected()
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, 0, len(rejected))
	for k := range rejected {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return rejected[keys[i]].Date.After(rejected[keys[j]].Date)
	})
	return rejected, keys, nil
}
