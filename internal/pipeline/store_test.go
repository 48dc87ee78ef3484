package pipeline

import (
	"testing"
	"time"

	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), &common.PipelineConfig{}, common.GetLogger())
}

func testJob(id, atsJobID string) models.Job {
	return models.Job{
		ID:       id,
		ATSJobID: atsJobID,
		ATS:      "greenhouse",
		Company:  "Acme",
		Title:    "PM",
		Location: "Raleigh, NC",
	}
}

func TestAddAndDedup(t *testing.T) {
	s := newTestStore(t)

	added, err := s.Add(testJob("gh_111", "111"), models.JobStatusNew)
	if err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}

	added, err = s.Add(testJob("gh_111", "111"), models.JobStatusNew)
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("duplicate id should not be added")
	}

	job, err := s.GetByID("gh_111")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != models.JobStatusNew {
		t.Errorf("status = %s, want new", job.Status)
	}
	if len(job.StatusHistory) != 1 || job.StatusHistory[0].Status != models.JobStatusNew {
		t.Errorf("history = %+v", job.StatusHistory)
	}
	if !job.IsActiveOnATS {
		t.Error("new job should be active on ATS")
	}
	if job.FirstSeen.IsZero() || job.LastSeen.IsZero() || job.AddedToPipeline.IsZero() {
		t.Error("timestamps not stamped")
	}
}

// Mirrors the full ingestion/dedup/rejection-memory round trip: reject a job,
// re-ingest (blocked), un-reject by moving it back to new, re-ingest again
// (still blocked because the job itself is still present).
func TestRejectionMemoryLifecycle(t *testing.T) {
	s := newTestStore(t)
	payload := []models.Job{testJob("gh_111", "111")}

	n, err := s.AddBulk(payload, models.JobStatusNew)
	if err != nil || n != 1 {
		t.Fatalf("first run: n=%d err=%v", n, err)
	}

	n, _ = s.AddBulk(payload, models.JobStatusNew)
	if n != 0 {
		t.Fatalf("second run should add 0, got %d", n)
	}

	if _, err := s.UpdateStatus("gh_111", models.JobStatusRejected, nil); err != nil {
		t.Fatal(err)
	}
	rej, err := s.IsRejected("111")
	if err != nil || !rej {
		t.Fatalf("expected 111 in rejection memory, got rej=%v err=%v", rej, err)
	}

	// Third run: still blocked, job still present
	n, _ = s.AddBulk(payload, models.JobStatusNew)
	if n != 0 {
		t.Fatalf("third run should add 0, got %d", n)
	}
	if ok, _ := s.Exists("gh_111"); !ok {
		t.Error("rejected job should remain in the store")
	}

	// Transition out of rejected removes the memory entry
	if _, err := s.UpdateStatus("gh_111", models.JobStatusNew, nil); err != nil {
		t.Fatal(err)
	}
	if rej, _ := s.IsRejected("111"); rej {
		t.Error("memory entry should be removed after transition to new")
	}

	// Fourth run: gh_111 already present, 0 added
	n, _ = s.AddBulk(payload, models.JobStatusNew)
	if n != 0 {
		t.Fatalf("fourth run should add 0, got %d", n)
	}
}

func TestAddBlockedByRejectionMemoryAfterRemove(t *testing.T) {
	s := newTestStore(t)

	s.Add(testJob("gh_1", "1"), models.JobStatusNew)
	s.UpdateStatus("gh_1", models.JobStatusRejected, nil)
	s.Remove("gh_1")

	// Removal is not un-rejection
	added, err := s.Add(testJob("gh_1", "1"), models.JobStatusNew)
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("re-add of a remembered ats_job_id should be blocked")
	}

	if err := s.Unreject("1"); err != nil {
		t.Fatal(err)
	}
	added, _ = s.Add(testJob("gh_1", "1"), models.JobStatusNew)
	if !added {
		t.Error("re-add should succeed after explicit unreject")
	}
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	s := newTestStore(t)
	s.Add(testJob("gh_1", "1"), models.JobStatusNew)

	for _, st := range []models.JobStatus{models.JobStatusApplied, models.JobStatusInterview, models.JobStatusOffer} {
		job, err := s.UpdateStatus("gh_1", st, nil)
		if err != nil {
			t.Fatal(err)
		}
		if job.CurrentStatus() != st || job.Status != st {
			t.Errorf("after %s: status=%s history tail=%s", st, job.Status, job.CurrentStatus())
		}
	}

	job, _ := s.GetByID("gh_1")
	if len(job.StatusHistory) != 4 {
		t.Errorf("history length = %d, want 4", len(job.StatusHistory))
	}
}

func TestUpdateStatusAttachments(t *testing.T) {
	s := newTestStore(t)
	s.Add(testJob("gh_1", "1"), models.JobStatusNew)

	job, err := s.UpdateStatus("gh_1", models.JobStatusApplied, &interfaces.UpdateStatusOptions{
		Notes:      "phone screen Friday",
		FolderPath: "/apps/acme-pm",
		JDSummary:  "PM role, platform team",
	})
	if err != nil {
		t.Fatal(err)
	}
	if job.Notes != "phone screen Friday" || job.FolderPath != "/apps/acme-pm" || job.JDSummary != "PM role, platform team" {
		t.Errorf("attachments not applied: %+v", job)
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpdateStatus("nope", models.JobStatusApplied, nil)
	if err != interfaces.ErrJobNotFound {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestUpdateStatusInvalid(t *testing.T) {
	s := newTestStore(t)
	s.Add(testJob("gh_1", "1"), models.JobStatusNew)
	if _, err := s.UpdateStatus("gh_1", "garbage", nil); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestAddBulkIdempotent(t *testing.T) {
	s := newTestStore(t)
	payload := []models.Job{testJob("a", "1"), testJob("b", "2"), testJob("c", "3")}

	n, _ := s.AddBulk(payload, models.JobStatusNew)
	if n != 3 {
		t.Fatalf("first AddBulk = %d, want 3", n)
	}
	n, _ = s.AddBulk(payload, models.JobStatusNew)
	if n != 0 {
		t.Errorf("second AddBulk = %d, want 0", n)
	}
	all, _ := s.GetAll()
	if len(all) != 3 {
		t.Errorf("store size = %d, want 3", len(all))
	}
}

func TestSweeperClosesMissingAppliedJob(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s.nowFunc = func() time.Time { return base }
	s.Add(testJob("gh_222", "222"), models.JobStatusNew)
	s.UpdateStatus("gh_222", models.JobStatusApplied, nil)

	// 5 days later the job is gone from the board
	s.nowFunc = func() time.Time { return base.Add(5 * 24 * time.Hour) }
	flagged, err := s.MarkMissing(map[string]bool{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(flagged) != 1 || flagged[0].ID != "gh_222" {
		t.Fatalf("flagged = %+v, want [gh_222]", flagged)
	}

	job, _ := s.GetByID("gh_222")
	if job.Status != models.JobStatusClosed {
		t.Errorf("status = %s, want closed", job.Status)
	}
	if !job.NeedsAttention {
		t.Error("needs_attention should be set")
	}
	if job.IsActiveOnATS {
		t.Error("is_active_on_ats should be cleared")
	}
	last := job.StatusHistory[len(job.StatusHistory)-1]
	if last.Reason != "Not seen on ATS for 5 days" {
		t.Errorf("reason = %q", last.Reason)
	}
}

func TestSweeperIdempotent(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s.nowFunc = func() time.Time { return base }
	s.Add(testJob("gh_222", "222"), models.JobStatusNew)
	s.UpdateStatus("gh_222", models.JobStatusApplied, nil)

	s.nowFunc = func() time.Time { return base.Add(5 * 24 * time.Hour) }
	first, _ := s.MarkMissing(map[string]bool{}, 3)
	second, _ := s.MarkMissing(map[string]bool{}, 3)

	if len(first) != 1 {
		t.Errorf("first sweep flagged %d, want 1", len(first))
	}
	if len(second) != 0 {
		t.Errorf("second sweep flagged %d, want 0", len(second))
	}
}

func TestSweeperSkipsRecentAndNewJobs(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s.nowFunc = func() time.Time { return base }
	s.Add(testJob("fresh", "1"), models.JobStatusNew)
	s.Add(testJob("applied_recent", "2"), models.JobStatusNew)
	s.UpdateStatus("applied_recent", models.JobStatusApplied, nil)

	// Only 2 days later: under threshold
	s.nowFunc = func() time.Time { return base.Add(2 * 24 * time.Hour) }
	flagged, err := s.MarkMissing(map[string]bool{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(flagged) != 0 {
		t.Errorf("flagged = %+v, want none", flagged)
	}

	// New jobs never get swept to closed even past threshold
	s.nowFunc = func() time.Time { return base.Add(10 * 24 * time.Hour) }
	flagged, _ = s.MarkMissing(map[string]bool{}, 3)
	for _, j := range flagged {
		if j.ID == "fresh" {
			t.Error("new-status job should not be swept")
		}
	}
	job, _ := s.GetByID("fresh")
	if job.Status != models.JobStatusNew {
		t.Errorf("fresh status = %s, want new", job.Status)
	}
	if job.IsActiveOnATS {
		t.Error("fresh job absent from active ids should lose active flag")
	}
}

func TestSweeperLeavesActiveJobsAlone(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s.nowFunc = func() time.Time { return base }
	s.Add(testJob("gh_1", "1"), models.JobStatusNew)
	s.UpdateStatus("gh_1", models.JobStatusApplied, nil)

	s.nowFunc = func() time.Time { return base.Add(10 * 24 * time.Hour) }
	flagged, _ := s.MarkMissing(map[string]bool{"gh_1": true}, 3)
	if len(flagged) != 0 {
		t.Errorf("job in active set should not be swept: %+v", flagged)
	}
}

func TestLastSeenOnlyMovesForward(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s.nowFunc = func() time.Time { return base }
	s.Add(testJob("gh_1", "1"), models.JobStatusNew)

	// Clock skew backwards must not rewind last_seen
	s.nowFunc = func() time.Time { return base.Add(-time.Hour) }
	if err := s.UpdateLastSeenBulk([]string{"gh_1"}); err != nil {
		t.Fatal(err)
	}
	job, _ := s.GetByID("gh_1")
	if !job.LastSeen.Equal(base) {
		t.Errorf("last_seen moved backwards: %v", job.LastSeen)
	}

	s.nowFunc = func() time.Time { return base.Add(time.Hour) }
	s.UpdateLastSeenBulk([]string{"gh_1"})
	job, _ = s.GetByID("gh_1")
	if !job.LastSeen.Equal(base.Add(time.Hour)) {
		t.Errorf("last_seen = %v, want %v", job.LastSeen, base.Add(time.Hour))
	}
}

func TestActiveArchiveSplit(t *testing.T) {
	s := newTestStore(t)
	s.Add(testJob("a", "1"), models.JobStatusNew)
	s.Add(testJob("b", "2"), models.JobStatusNew)
	s.UpdateStatus("b", models.JobStatusRejected, nil)

	active, _ := s.GetActive()
	archive, _ := s.GetArchive()
	if len(active) != 1 || active[0].ID != "a" {
		t.Errorf("active = %+v", active)
	}
	if len(archive) != 1 || archive[0].ID != "b" {
		t.Errorf("archive = %+v", archive)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	s.Add(testJob("a", "1"), models.JobStatusNew)
	s.Add(testJob("b", "2"), models.JobStatusNew)
	s.UpdateStatus("b", models.JobStatusRejected, nil)

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d", stats.Total)
	}
	if stats.ByStatus[models.JobStatusNew] != 1 || stats.ByStatus[models.JobStatusRejected] != 1 {
		t.Errorf("by_status = %+v", stats.ByStatus)
	}
	if stats.Rejected != 1 {
		t.Errorf("rejected memory = %d, want 1", stats.Rejected)
	}
}

func TestPersistenceAcrossStoreInstances(t *testing.T) {
	dir := t.TempDir()
	cfg := &common.PipelineConfig{}
	logger := common.GetLogger()

	s1 := NewStore(dir, cfg, logger)
	s1.Add(testJob("gh_1", "1"), models.JobStatusNew)
	s1.UpdateStatus("gh_1", models.JobStatusRejected, nil)

	s2 := NewStore(dir, cfg, logger)
	if rej, _ := s2.IsRejected("1"); !rej {
		t.Error("rejection memory should survive restart")
	}
	job, err := s2.GetByID("gh_1")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != models.JobStatusRejected || len(job.StatusHistory) != 2 {
		t.Errorf("restored job = %+v", job)
	}
}
