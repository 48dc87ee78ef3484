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

const smartRecruitersPageSize = 100

// SmartRecruitersParser reads the public SmartRecruiters postings API
type SmartRecruitersParser struct {
	fetcher
	apiBase string
}

var _ interfaces.ATSParser = (*SmartRecruitersParser)(nil)

// NewSmartRecruitersParser creates a SmartRecruiters parser
func NewSmartRecruitersParser(client *http.Client, logger arbor.ILogger) *SmartRecruitersParser {
	return &SmartRecruitersParser{
		fetcher: newFetcher(client, logger),
		apiBase: "https://api.smartrecruiters.com",
	}
}

func (p *SmartRecruitersParser) Tag() string { return "smartrecruiters" }

// SetAPIBase overrides the API base URL (tests, proxies)
func (p *SmartRecruitersParser) SetAPIBase(base string) { p.apiBase = base }

type smartRecruitersPosting struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ReleasedDate string `json:"releasedDate"`
	Location     struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	Department struct {
		Label string `json:"label"`
	} `json:"department"`
}

type smartRecruitersResponse struct {
	TotalFound int                      `json:"totalFound"`
	Content    []smartRecruitersPosting `json:"content"`
}

func (p *SmartRecruitersParser) Parse(ctx context.Context, company, boardURL string) ([]models.Job, error) {
	identifier, err := boardToken(boardURL)
	if err != nil {
		return nil, &PermanentError{Op: "smartrecruiters company identifier", Err: err}
	}

	var jobs []models.Job
	offset := 0
	for {
		url := fmt.Sprintf("%s/v1/companies/%s/postings?limit=%d&offset=%d",
			p.apiBase, identifier, smartRecruitersPageSize, offset)
		var resp smartRecruitersResponse
		if err := p.fetchJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
			return nil, err
		}
		if len(resp.Content) == 0 {
			break
		}

		for _, sp := range resp.Content {
			locParts := []string{}
			if sp.Location.City != "" {
				locParts = append(locParts, sp.Location.City)
			}
			if sp.Location.Region != "" {
				locParts = append(locParts, sp.Location.Region)
			}
			location := strings.Join(locParts, ", ")
			if sp.Location.Remote {
				if location == "" {
					location = "Remote"
				} else {
					location += " | Remote"
				}
			}
			if location == "" {
				location = sp.Location.Country
			}

			jobs = append(jobs, models.Job{
				ID:             "smartrecruiters_" + sp.ID,
				ATSJobID:       sp.ID,
				ATS:            p.Tag(),
				Company:        company,
				Title:          sp.Name,
				Location:       location,
				Department:     sp.Department.Label,
				URL:            fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", identifier, sp.ID),
				FirstPublished: sp.ReleasedDate,
				UpdatedAt:      sp.ReleasedDate,
			})
		}

		offset += smartRecruitersPageSize
		if offset >= resp.TotalFound {
			break
		}
	}

	p.logger.Debug().
		Str("company", company).
		Int("jobs", len(jobs)).
		Msg("SmartRecruiters board parsed")
	return jobs, nil
}
