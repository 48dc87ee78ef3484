package ats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
)

const workdayPageSize = 20

// WorkdayParser reads the Workday CXS job search endpoint. Workday boards are
// paginated POST searches rather than a single listing document.
type WorkdayParser struct {
	fetcher
}

var _ interfaces.ATSParser = (*WorkdayParser)(nil)

// NewWorkdayParser creates a Workday parser
func NewWorkdayParser(client *http.Client, logger arbor.ILogger) *WorkdayParser {
	return &WorkdayParser{fetcher: newFetcher(client, logger)}
}

func (p *WorkdayParser) Tag() string { return "workday" }

type workdayPosting struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"`
}

type workdayResponse struct {
	Total       int              `json:"total"`
	JobPostings []workdayPosting `json:"jobPostings"`
}

// workdayEndpoint derives the CXS search URL from a board URL like
// https://acme.wd5.myworkdayjobs.com/en-US/External ->
// https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/External/jobs
func workdayEndpoint(boardURL string) (endpoint, base string, err error) {
	u, err := url.Parse(strings.TrimRight(boardURL, "/"))
	if err != nil {
		return "", "", err
	}
	parts := []string{}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" {
			continue
		}
		// Locale segments like en-US are not part of the site name
		if len(seg) == 5 && seg[2] == '-' {
			continue
		}
		parts = append(parts, seg)
	}
	if len(parts) == 0 {
		return "", "", fmt.Errorf("no site segment in %q", boardURL)
	}
	site := parts[len(parts)-1]
	tenant := strings.Split(u.Host, ".")[0]
	base = u.Scheme + "://" + u.Host
	endpoint = fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", base, tenant, site)
	return endpoint, base, nil
}

func (p *WorkdayParser) Parse(ctx context.Context, company, boardURL string) ([]models.Job, error) {
	endpoint, base, err := workdayEndpoint(boardURL)
	if err != nil {
		return nil, &PermanentError{Op: "workday endpoint", Err: err}
	}

	var jobs []models.Job
	offset := 0
	for {
		body, _ := json.Marshal(map[string]interface{}{
			"appliedFacets": map[string]interface{}{},
			"limit":         workdayPageSize,
			"offset":        offset,
			"searchText":    "",
		})

		var resp workdayResponse
		if err := p.fetchJSON(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
			return nil, err
		}
		if len(resp.JobPostings) == 0 {
			break
		}

		for _, wp := range resp.JobPostings {
			atsJobID := ""
			if len(wp.BulletFields) > 0 {
				atsJobID = wp.BulletFields[0]
			}
			if atsJobID == "" {
				// Fall back to the path tail, which Workday keeps stable
				tail := wp.ExternalPath
				if idx := strings.LastIndex(tail, "/"); idx >= 0 {
					tail = tail[idx+1:]
				}
				atsJobID = tail
			}
			if atsJobID == "" {
				continue
			}
			jobs = append(jobs, models.Job{
				ID:             "workday_" + atsJobID,
				ATSJobID:       atsJobID,
				ATS:            p.Tag(),
				Company:        company,
				Title:          wp.Title,
				Location:       wp.LocationsText,
				URL:            base + wp.ExternalPath,
				FirstPublished: wp.PostedOn,
				UpdatedAt:      wp.PostedOn,
			})
		}

		offset += workdayPageSize
		if resp.Total > 0 && offset >= resp.Total {
			break
		}
	}

	p.logger.Debug().
		Str("company", company).
		Int("jobs", len(jobs)).
		Msg("Workday board parsed")
	return jobs, nil
}
