package ats

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

// LeverParser reads the public Lever postings API
type LeverParser struct {
	fetcher
	apiBase string
}

var _ interfaces.ATSParser = (*LeverParser)(nil)

// NewLeverParser creates a Lever parser
func NewLeverParser(client *http.Client, logger arbor.ILogger) *LeverParser {
	return &LeverParser{
		fetcher: newFetcher(client, logger),
		apiBase: "https://api.lever.co",
	}
}

func (p *LeverParser) Tag() string { return "lever" }

// SetAPIBase overrides the API base URL (tests, proxies)
func (p *LeverParser) SetAPIBase(base string) { p.apiBase = base }

type leverPosting struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	HostedURL   string `json:"hostedUrl"`
	CreatedAt   int64  `json:"createdAt"` // epoch millis
	Description string `json:"description"`
	Categories  struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Department string `json:"department"`
	} `json:"categories"`
}

func (p *LeverParser) Parse(ctx context.Context, company, boardURL string) ([]models.Job, error) {
	site, err := boardToken(boardURL)
	if err != nil {
		return nil, &PermanentError{Op: "lever site token", Err: err}
	}

	url := fmt.Sprintf("%s/v0/postings/%s?mode=json", p.apiBase, site)
	var postings []leverPosting
	if err := p.fetchJSON(ctx, http.MethodGet, url, nil, &postings); err != nil {
		return nil, err
	}

	jobs := make([]models.Job, 0, len(postings))
	for _, lp := range postings {
		department := lp.Categories.Team
		if department == "" {
			department = lp.Categories.Department
		}
		published := ""
		if lp.CreatedAt > 0 {
			published = time.UnixMilli(lp.CreatedAt).UTC().Format(time.RFC3339)
		}
		jobs = append(jobs, models.Job{
			ID:             "lever_" + lp.ID,
			ATSJobID:       lp.ID,
			ATS:            p.Tag(),
			Company:        company,
			Title:          lp.Text,
			Location:       lp.Categories.Location,
			Department:     department,
			URL:            lp.HostedURL,
			FirstPublished: published,
			UpdatedAt:      published,
			JDSummary:      htmlToSummary(lp.Description),
		})
	}

	p.logger.Debug().
		Str("company", company).
		Int("jobs", len(jobs)).
		Msg("Lever board parsed")
	return jobs, nil
}
