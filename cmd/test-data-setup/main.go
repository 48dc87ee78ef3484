package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// TestDataSetup seeds a running server with sample pipeline jobs for
// development and UI work
type TestDataSetup struct {
	baseURL string
	client  *http.Client
	logger  arbor.ILogger
}

func NewTestDataSetup(baseURL string, logger arbor.ILogger) *TestDataSetup {
	return &TestDataSetup{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type seedJob struct {
	id       string
	atsJobID string
	ats      string
	company  string
	title    string
	location string
	url      string
	status   string
	hqState  string
	priority int
}

var seedJobs = []seedJob{
	{
		id:       "greenhouse_4500001",
		atsJobID: "4500001",
		ats:      "greenhouse",
		company:  "Relay Payments",
		title:    "Senior Software Engineer, Platform",
		location: "Raleigh, NC",
		url:      "https://boards.greenhouse.io/relaypayments/jobs/4500001",
		status:   "new",
		hqState:  "NC",
		priority: 20,
	},
	{
		id:       "lever_eng-backend-12",
		atsJobID: "eng-backend-12",
		ats:      "lever",
		company:  "Pendo",
		title:    "Staff Backend Engineer",
		location: "Durham, NC",
		url:      "https://jobs.lever.co/pendo/eng-backend-12",
		status:   "applied",
		hqState:  "NC",
		priority: 15,
	},
	{
		id:       "ashby_platform-eng-7",
		atsJobID: "platform-eng-7",
		ats:      "ashby",
		company:  "Linear",
		title:    "Software Engineer, Infrastructure",
		location: "Remote (US)",
		url:      "https://jobs.ashbyhq.com/linear/platform-eng-7",
		status:   "new",
		priority: 10,
	},
	{
		id:       "smartrecruiters_74400021",
		atsJobID: "74400021",
		ats:      "smartrecruiters",
		company:  "Bosch",
		title:    "Cloud Engineer",
		location: "Charlotte, NC",
		url:      "https://jobs.smartrecruiters.com/Bosch/74400021",
		status:   "interview",
		hqState:  "NC",
	},
}

// AddJob posts one job into the pipeline
func (t *TestDataSetup) AddJob(s seedJob) error {
	now := time.Now().UTC().Format(time.RFC3339)
	payload := map[string]interface{}{
		"job": map[string]interface{}{
			"id":               s.id,
			"ats_job_id":       s.atsJobID,
			"ats":              s.ats,
			"company":          s.company,
			"title":            s.title,
			"location":         s.location,
			"url":              s.url,
			"updated_at":       now,
			"is_active_on_ats": true,
			"hq_state":         s.hqState,
			"company_priority": s.priority,
		},
		"status": s.status,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	resp, err := t.client.Post(t.baseURL+"/api/pipeline/add", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("add failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	t.logger.Info().
		Str("id", s.id).
		Str("company", s.company).
		Str("status", s.status).
		Msg("Seeded job")
	return nil
}

// SetupTestData seeds the full sample set
func (t *TestDataSetup) SetupTestData() error {
	t.logger.Info().Str("server", t.baseURL).Msg("Seeding pipeline test data")

	for _, s := range seedJobs {
		if err := t.AddJob(s); err != nil {
			return err
		}
	}

	t.logger.Info().Int("jobs", len(seedJobs)).Msg("Test data setup complete")
	t.logger.Info().Msg("Visit /api/pipeline/all to see the seeded pipeline")
	return nil
}

// CleanupTestData removes every seeded job
func (t *TestDataSetup) CleanupTestData() error {
	t.logger.Info().Str("server", t.baseURL).Msg("Removing seeded test data")

	for _, s := range seedJobs {
		req, err := http.NewRequest("DELETE", t.baseURL+"/api/pipeline/remove/"+s.id, nil)
		if err != nil {
			return err
		}
		resp, err := t.client.Do(req)
		if err != nil {
			t.logger.Warn().Err(err).Str("id", s.id).Msg("Failed to remove job")
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			t.logger.Info().Str("id", s.id).Msg("Removed job")
		} else if resp.StatusCode != http.StatusNotFound {
			t.logger.Warn().Int("status", resp.StatusCode).Str("id", s.id).Msg("Unexpected removal response")
		}
	}

	t.logger.Info().Msg("Cleanup complete")
	return nil
}

func main() {
	logger := arbor.NewLogger().WithConsoleWriter(models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		TextOutput:       true,
		DisableTimestamp: false,
	})

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8280"
	}

	cleanup := false
	for _, arg := range os.Args[1:] {
		if arg == "--cleanup" || arg == "-c" {
			cleanup = true
			break
		}
	}

	setup := NewTestDataSetup(serverURL, logger)

	if cleanup {
		if err := setup.CleanupTestData(); err != nil {
			logger.Fatal().Err(err).Msg("Cleanup failed")
		}
		return
	}

	resp, err := http.Get(serverURL + "/api/health")
	if err != nil {
		logger.Fatal().
			Str("server_url", serverURL).
			Msg("Server is not running - start it first: ./pursuit -c pursuit.toml")
	}
	resp.Body.Close()

	if err := setup.SetupTestData(); err != nil {
		logger.Fatal().Err(err).Msg("Setup failed")
	}
}
