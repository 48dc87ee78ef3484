package ats

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

// AshbyParser reads the public Ashby posting API
type AshbyParser struct {
	fetcher
	apiBase string
}

var _ interfaces.ATSParser = (*AshbyParser)(nil)

// NewAshbyParser creates an Ashby parser
func NewAshbyParser(client *http.Client, logger arbor.ILogger) *AshbyParser {
	return &AshbyParser{
		fetcher: newFetcher(client, logger),
		apiBase: "https://api.ashbyhq.com",
	}
}

func (p *AshbyParser) Tag() string { return "ashby" }

// SetAPIBase overrides the API base URL (tests, proxies)
func (p *AshbyParser) SetAPIBase(base string) { p.apiBase = base }

type ashbyJob struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Department  string `json:"department"`
	JobURL      string `json:"jobUrl"`
	PublishedAt string `json:"publishedAt"`
	IsListed    bool   `json:"isListed"`
}

type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

func (p *AshbyParser) Parse(ctx context.Context, company, boardURL string) ([]models.Job, error) {
	board, err := boardToken(boardURL)
	if err != nil {
		return nil, &PermanentError{Op: "ashby board name", Err: err}
	}

	url := fmt.Sprintf("%s/posting-api/job-board/%s?includeCompensation=false", p.apiBase, board)
	var resp ashbyResponse
	if err := p.fetchJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	jobs := make([]models.Job, 0, len(resp.Jobs))
	for _, aj := range resp.Jobs {
		if !aj.IsListed {
			continue
		}
		jobs = append(jobs, models.Job{
			ID:             "ashby_" + aj.ID,
			ATSJobID:       aj.ID,
			ATS:            p.Tag(),
			Company:        company,
			Title:          aj.Title,
			Location:       aj.Location,
			Department:     aj.Department,
			URL:            aj.JobURL,
			FirstPublished: aj.PublishedAt,
			UpdatedAt:      aj.PublishedAt,
		})
	}

	p.logger.Debug().
		Str("company", company).
		Int("jobs", len(jobs)).
		Msg("Ashby board parsed")
	return jobs, nil
}
