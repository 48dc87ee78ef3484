package ats

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/storage/kernel"
)

const unsupportedFile = "unsupported_ats.json"

// DiscoveryCandidate is one link scraped from a board page on an ATS we do
// not have a parser for
type DiscoveryCandidate struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// DiscoveryRecord is the scratch entry written per unsupported company board
type DiscoveryRecord struct {
	Company    string               `json:"company"`
	BoardURL   string               `json:"board_url"`
	ScannedAt  time.Time            `json:"scanned_at"`
	Candidates []DiscoveryCandidate `json:"candidates"`
}

// Discovery scrapes board pages on unsupported ATSes and records candidate
// job links to the discovery scratch file so a parser can be written later.
type Discovery struct {
	fetcher
	path string
}

// NewDiscovery creates a discovery scanner writing under dataDir
func NewDiscovery(client *http.Client, logger arbor.ILogger, dataDir string) *Discovery {
	return &Discovery{
		fetcher: newFetcher(client, logger),
		path:    filepath.Join(dataDir, unsupportedFile),
	}
}

// Scan fetches the board page and records anchors that look like job
// postings. It never returns jobs: the board stays unsupported until a real
// parser exists.
func (d *Discovery) Scan(ctx context.Context, company, boardURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	if err != nil {
		return &PermanentError{Op: "discovery request", Err: err}
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return &TransientError{Op: "discovery fetch " + boardURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &TransientError{Op: "discovery fetch " + boardURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return &PermanentError{Op: "discovery parse", Err: err}
	}

	var candidates []DiscoveryCandidate
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())
		if text == "" || href == "" || href == "#" {
			return
		}
		lower := strings.ToLower(href + " " + text)
		if strings.Contains(lower, "job") || strings.Contains(lower, "career") ||
			strings.Contains(lower, "position") || strings.Contains(lower, "opening") {
			candidates = append(candidates, DiscoveryCandidate{Text: text, Href: href})
		}
	})

	records := map[string]DiscoveryRecord{}
	if err := kernel.Load(d.path, &records); err != nil {
		return err
	}
	records[company] = DiscoveryRecord{
		Company:    company,
		BoardURL:   boardURL,
		ScannedAt:  time.Now(),
		Candidates: candidates,
	}
	if err := kernel.Save(d.path, records); err != nil {
		return err
	}

	d.logger.Info().
		Str("company", company).
		Int("candidates", len(candidates)).
		Msg("Unsupported ATS board scanned")
	return nil
}
