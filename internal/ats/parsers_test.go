package ats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/pursuit/internal/common"
)

func TestBoardToken(t *testing.T) {
	tests := []struct {
		url   string
		token string
		ok    bool
	}{
		{"https://boards.greenhouse.io/acme", "acme", true},
		{"https://boards.greenhouse.io/acme/", "acme", true},
		{"https://jobs.lever.co/acme", "acme", true},
		{"https://jobs.ashbyhq.com/Acme", "Acme", true},
		{"https://boards.greenhouse.io", "", false},
	}
	for _, tt := range tests {
		token, err := boardToken(tt.url)
		if tt.ok && (err != nil || token != tt.token) {
			t.Errorf("boardToken(%q) = %q, %v; want %q", tt.url, token, err, tt.token)
		}
		if !tt.ok && err == nil {
			t.Errorf("boardToken(%q) should fail", tt.url)
		}
	}
}

func TestGreenhouseParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jobs": []map[string]interface{}{
				{
					"id":              111,
					"title":           "Senior Product Manager",
					"absolute_url":    "https://boards.greenhouse.io/acme/jobs/111",
					"updated_at":      "2026-08-01T00:00:00-04:00",
					"first_published": "2026-07-01T00:00:00-04:00",
					"location":        map[string]string{"name": "Raleigh, NC"},
					"departments":     []map[string]interface{}{{"name": "Product"}},
				},
			},
		})
	}))
	defer srv.Close()

	p := NewGreenhouseParser(srv.Client(), common.GetLogger())
	p.apiBase = srv.URL

	jobs, err := p.Parse(context.Background(), "Acme", "https://boards.greenhouse.io/acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	j := jobs[0]
	if j.ID != "greenhouse_111" || j.ATSJobID != "111" {
		t.Errorf("ids = %q/%q", j.ID, j.ATSJobID)
	}
	if j.ATS != "greenhouse" || j.Company != "Acme" {
		t.Errorf("ats=%q company=%q", j.ATS, j.Company)
	}
	if j.Title != "Senior Product Manager" || j.Location != "Raleigh, NC" || j.Department != "Product" {
		t.Errorf("payload fields: %+v", j)
	}
	if j.FirstPublished == "" || j.UpdatedAt == "" {
		t.Error("source timestamps should be carried through")
	}
}

func TestLeverParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/postings/acme" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"id":        "abc-123",
				"text":      "Program Manager",
				"hostedUrl": "https://jobs.lever.co/acme/abc-123",
				"createdAt": 1753968000000,
				"categories": map[string]string{
					"location": "Remote - USA",
					"team":     "Operations",
				},
			},
		})
	}))
	defer srv.Close()

	p := NewLeverParser(srv.Client(), common.GetLogger())
	p.apiBase = srv.URL

	jobs, err := p.Parse(context.Background(), "Acme", "https://jobs.lever.co/acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	j := jobs[0]
	if j.ID != "lever_abc-123" || j.ATS != "lever" {
		t.Errorf("id=%q ats=%q", j.ID, j.ATS)
	}
	if j.Department != "Operations" || j.Location != "Remote - USA" {
		t.Errorf("dept=%q loc=%q", j.Department, j.Location)
	}
	if j.FirstPublished == "" {
		t.Error("createdAt should map to first_published")
	}
}

func TestWorkdayParsePaginates(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req struct {
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		atomic.AddInt32(&calls, 1)

		postings := []map[string]interface{}{}
		if req.Offset == 0 {
			for i := 0; i < 20; i++ {
				postings = append(postings, map[string]interface{}{
					"title":         "TPM",
					"externalPath":  "/job/raleigh/tpm_R100",
					"locationsText": "Raleigh, NC",
					"postedOn":      "Posted 3 Days Ago",
					"bulletFields":  []string{"R100"},
				})
			}
		} else {
			postings = append(postings, map[string]interface{}{
				"title":         "Program Manager",
				"externalPath":  "/job/durham/pm_R200",
				"locationsText": "Durham, NC",
				"bulletFields":  []string{"R200"},
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"total":       21,
			"jobPostings": postings,
		})
	}))
	defer srv.Close()

	p := NewWorkdayParser(srv.Client(), common.GetLogger())
	jobs, err := p.Parse(context.Background(), "Acme", srv.URL+"/en-US/External")
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 21 {
		t.Errorf("jobs = %d, want 21", len(jobs))
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if jobs[20].ID != "workday_R200" {
		t.Errorf("last job id = %q", jobs[20].ID)
	}
	if jobs[0].URL != srv.URL+"/job/raleigh/tpm_R100" {
		t.Errorf("url = %q", jobs[0].URL)
	}
}

func TestAshbyParseSkipsUnlisted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jobs": []map[string]interface{}{
				{"id": "a1", "title": "PM", "location": "Raleigh, NC", "jobUrl": "https://jobs.ashbyhq.com/acme/a1", "isListed": true},
				{"id": "a2", "title": "Hidden", "isListed": false},
			},
		})
	}))
	defer srv.Close()

	p := NewAshbyParser(srv.Client(), common.GetLogger())
	p.apiBase = srv.URL

	jobs, err := p.Parse(context.Background(), "Acme", "https://jobs.ashbyhq.com/acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].ID != "ashby_a1" {
		t.Errorf("jobs = %+v", jobs)
	}
}

func TestSmartRecruitersParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"totalFound": 1,
			"content": []map[string]interface{}{
				{
					"id":           "744000",
					"name":         "Project Manager",
					"releasedDate": "2026-08-01T00:00:00.000Z",
					"location": map[string]interface{}{
						"city":   "Raleigh",
						"region": "NC",
						"remote": false,
					},
					"department": map[string]string{"label": "Delivery"},
				},
			},
		})
	}))
	defer srv.Close()

	p := NewSmartRecruitersParser(srv.Client(), common.GetLogger())
	p.apiBase = srv.URL

	jobs, err := p.Parse(context.Background(), "Acme", "https://careers.smartrecruiters.com/Acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	j := jobs[0]
	if j.ID != "smartrecruiters_744000" || j.Location != "Raleigh, NC" || j.Department != "Delivery" {
		t.Errorf("job = %+v", j)
	}
}

func TestFetchJSONPermanentOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewGreenhouseParser(srv.Client(), common.GetLogger())
	p.apiBase = srv.URL

	_, err := p.Parse(context.Background(), "Acme", "https://boards.greenhouse.io/acme")
	if !IsPermanent(err) {
		t.Errorf("404 should be permanent, got %v", err)
	}
}

func TestFetchJSONRetriesTransient(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"jobs": []interface{}{}})
	}))
	defer srv.Close()

	p := NewGreenhouseParser(srv.Client(), common.GetLogger())
	p.apiBase = srv.URL
	p.retry.InitialBackoff = 10 * time.Millisecond

	_, err := p.Parse(context.Background(), "Acme", "https://boards.greenhouse.io/acme")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestFetchJSONTransientWhenExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewLeverParser(srv.Client(), common.GetLogger())
	p.apiBase = srv.URL
	p.retry.InitialBackoff = 10 * time.Millisecond

	_, err := p.Parse(context.Background(), "Acme", "https://jobs.lever.co/acme")
	if !IsTransient(err) {
		t.Errorf("exhausted 5xx should be transient, got %v", err)
	}
}

func TestSetRetryOverridesPolicy(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewGreenhouseParser(srv.Client(), common.GetLogger())
	p.apiBase = srv.URL
	p.SetRetry(2, 5*time.Millisecond)

	_, err := p.Parse(context.Background(), "Acme", "https://boards.greenhouse.io/acme")
	if !IsTransient(err) {
		t.Errorf("exhausted 5xx should be transient, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want the configured 2 attempts", calls)
	}
}

func TestRegistryDetectATS(t *testing.T) {
	r := NewRegistry()
	tests := map[string]string{
		"https://boards.greenhouse.io/acme":          "greenhouse",
		"https://jobs.lever.co/acme":                 "lever",
		"https://acme.wd5.myworkdayjobs.com/Careers": "workday",
		"https://jobs.ashbyhq.com/acme":              "ashby",
		"https://careers.smartrecruiters.com/Acme":   "smartrecruiters",
		"https://example.com/careers":                "",
	}
	for url, want := range tests {
		if got := r.DetectATS(url); got != want {
			t.Errorf("DetectATS(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(NewGreenhouseParser(http.DefaultClient, common.GetLogger()))
	r.Register(NewLeverParser(http.DefaultClient, common.GetLogger()))

	if _, ok := r.Get("greenhouse"); !ok {
		t.Error("greenhouse parser should be registered")
	}
	if _, ok := r.Get("workday"); ok {
		t.Error("workday parser should not be registered")
	}
	tags := r.Tags()
	if len(tags) != 2 || tags[0] != "greenhouse" || tags[1] != "lever" {
		t.Errorf("tags = %v", tags)
	}
}
