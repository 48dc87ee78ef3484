package handlers

import (
	"errors"

	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

// fakeStore is a scripted PipelineStore for handler tests
type fakeStore struct {
	jobs       []models.Job
	rejected   map[string]bool
	fail       bool
	unrejected []string
}

var _ interfaces.PipelineStore = (*fakeStore)(nil)

var errStoreDown = errors.New("store unavailable")

func (s *fakeStore) Add(job models.Job, status models.JobStatus) (bool, error) {
	if s.fail {
		return false, errStoreDown
	}
	for _, j := range s.jobs {
		if j.ID == job.ID {
			return false, nil
		}
	}
	job.Status = status
	s.jobs = append(s.jobs, job)
	return true, nil
}

func (s *fakeStore) AddBulk(jobs []models.Job, status models.JobStatus) (int, error) {
	added := 0
	for _, j := range jobs {
		ok, err := s.Add(j, status)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func (s *fakeStore) UpdateStatus(id string, status models.JobStatus, opts *interfaces.UpdateStatusOptions) (*models.Job, error) {
	if s.fail {
		return nil, errStoreDown
	}
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			s.jobs[i].Status = status
			if opts != nil {
				if opts.Notes != "" {
					s.jobs[i].Notes = opts.Notes
				}
				if opts.JDSummary != "" {
					s.jobs[i].JDSummary = opts.JDSummary
				}
			}
			return &s.jobs[i], nil
		}
	}
	return nil, interfaces.ErrJobNotFound
}

func (s *fakeStore) UpdateLastSeen(id string) error        { return nil }
func (s *fakeStore) UpdateLastSeenBulk(ids []string) error { return nil }

func (s *fakeStore) MarkMissing(activeIDs map[string]bool, thresholdDays int) ([]models.Job, error) {
	return nil, nil
}

func (s *fakeStore) GetAll() ([]models.Job, error) {
	if s.fail {
		return nil, errStoreDown
	}
	return append([]models.Job{}, s.jobs...), nil
}

func (s *fakeStore) GetByStatus(status models.JobStatus) ([]models.Job, error) {
	if s.fail {
		return nil, errStoreDown
	}
	var out []models.Job
	for _, j := range s.jobs {
		if j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *fakeStore) GetActive() ([]models.Job, error) {
	if s.fail {
		return nil, errStoreDown
	}
	var out []models.Job
	for _, j := range s.jobs {
		switch j.Status {
		case models.JobStatusApplied, models.JobStatusInterview, models.JobStatusOffer:
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *fakeStore) GetArchive() ([]models.Job, error) {
	if s.fail {
		return nil, errStoreDown
	}
	var out []models.Job
	for _, j := range s.jobs {
		switch j.Status {
		case models.JobStatusRejected, models.JobStatusWithdrawn, models.JobStatusClosed, models.JobStatusExcluded:
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *fakeStore) GetByID(id string) (*models.Job, error) {
	if s.fail {
		return nil, errStoreDown
	}
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return &s.jobs[i], nil
		}
	}
	return nil, interfaces.ErrJobNotFound
}

func (s *fakeStore) Exists(id string) (bool, error) {
	_, err := s.GetByID(id)
	if errors.Is(err, interfaces.ErrJobNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *fakeStore) Stats() (*models.PipelineStats, error) {
	if s.fail {
		return nil, errStoreDown
	}
	stats := &models.PipelineStats{Total: len(s.jobs), ByStatus: map[models.JobStatus]int{}}
	for _, j := range s.jobs {
		stats.ByStatus[j.Status]++
		if j.IsActiveOnATS {
			stats.ActiveOnATS++
		}
	}
	return stats, nil
}

func (s *fakeStore) Remove(id string) (bool, error) {
	if s.fail {
		return false, errStoreDown
	}
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) IsRejected(atsJobID string) (bool, error) {
	return s.rejected[atsJobID], nil
}

func (s *fakeStore) Unreject(atsJobID string) error {
	if s.fail {
		return errStoreDown
	}
	delete(s.rejected, atsJobID)
	s.unrejected = append(s.unrejected, atsJobID)
	return nil
}
