package ats

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

// GreenhouseParser reads the public Greenhouse job board API
type GreenhouseParser struct {
	fetcher
	apiBase string
}

var _ interfaces.ATSParser = (*GreenhouseParser)(nil)

// NewGreenhouseParser creates a Greenhouse parser
func NewGreenhouseParser(client *http.Client, logger arbor.ILogger) *GreenhouseParser {
	return &GreenhouseParser{
		fetcher: newFetcher(client, logger),
		apiBase: "https://boards-api.greenhouse.io",
	}
}

func (p *GreenhouseParser) Tag() string { return "greenhouse" }

// SetAPIBase overrides the API base URL (tests, proxies)
func (p *GreenhouseParser) SetAPIBase(base string) { p.apiBase = base }

type greenhouseJob struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	AbsoluteURL    string `json:"absolute_url"`
	UpdatedAt      string `json:"updated_at"`
	FirstPublished string `json:"first_published"`
	Content        string `json:"content"`
	Location       struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// boardToken extracts the board slug from URLs like
// https://boards.greenhouse.io/acme or https://job-boards.greenhouse.io/acme/
func boardToken(boardURL string) (string, error) {
	trimmed := strings.TrimRight(boardURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return "", fmt.Errorf("cannot derive board token from %q", boardURL)
	}
	token := trimmed[idx+1:]
	if token == "" || strings.Contains(token, ".") {
		return "", fmt.Errorf("cannot derive board token from %q", boardURL)
	}
	return token, nil
}

func (p *GreenhouseParser) Parse(ctx context.Context, company, boardURL string) ([]models.Job, error) {
	token, err := boardToken(boardURL)
	if err != nil {
		return nil, &PermanentError{Op: "greenhouse board token", Err: err}
	}

	url := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", p.apiBase, token)
	var resp greenhouseResponse
	if err := p.fetchJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	jobs := make([]models.Job, 0, len(resp.Jobs))
	for _, gj := range resp.Jobs {
		atsJobID := fmt.Sprintf("%d", gj.ID)
		department := ""
		if len(gj.Departments) > 0 {
			department = gj.Departments[0].Name
		}
		jobs = append(jobs, models.Job{
			ID:             "greenhouse_" + atsJobID,
			ATSJobID:       atsJobID,
			ATS:            p.Tag(),
			Company:        company,
			Title:          gj.Title,
			Location:       gj.Location.Name,
			Department:     department,
			URL:            gj.AbsoluteURL,
			FirstPublished: gj.FirstPublished,
			UpdatedAt:      gj.UpdatedAt,
			JDSummary:      htmlToSummary(gj.Content),
		})
	}

	p.logger.Debug().
		Str("company", company).
		Int("jobs", len(jobs)).
		Msg("Greenhouse board parsed")
	return jobs, nil
}
