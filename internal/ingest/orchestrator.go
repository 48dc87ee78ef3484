package ingest

import (
	"context"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/ats"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/models"
	"github.com/ternarybob/pursuit/internal/normalize"
	"github.com/ternarybob/pursuit/internal/storage/kernel"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const statusFile = "company_status.json"

// Result summarizes one ingestion run
type Result struct {
	Companies int       `json:"companies"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Fetched   int       `json:"fetched"`
	Added     int       `json:"added"`
	Swept     int       `json:"swept"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}

// Orchestrator fans company fetches out over a bounded worker pool, merges
// the results into one bulk store write, then runs the missing-job sweeper.
type Orchestrator struct {
	store      interfaces.PipelineStore
	registry   interfaces.ParserRegistry
	discovery  *ats.Discovery
	events     interfaces.EventService
	config     *common.IngestConfig
	scoring    *common.ScoringConfig
	profile    string
	statusPath string
	logger     arbor.ILogger

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter

	runMu sync.Mutex // one ingestion run at a time
}

// NewOrchestrator creates an ingestion orchestrator
func NewOrchestrator(
	store interfaces.PipelineStore,
	registry interfaces.ParserRegistry,
	discovery *ats.Discovery,
	events interfaces.EventService,
	config *common.IngestConfig,
	scoring *common.ScoringConfig,
	profile string,
	dataDir string,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		store:      store,
		registry:   registry,
		discovery:  discovery,
		events:     events,
		config:     config,
		scoring:    scoring,
		profile:    profile,
		statusPath: filepath.Join(dataDir, statusFile),
		limiters:   map[string]*rate.Limiter{},
		logger:     logger,
	}
}

// hostLimiter returns the shared rate limiter for a board URL's host
func (o *Orchestrator) hostLimiter(boardURL string) *rate.Limiter {
	host := boardURL
	if u, err := url.Parse(boardURL); err == nil && u.Host != "" {
		host = u.Host
	}

	o.limiterMu.Lock()
	defer o.limiterMu.Unlock()
	if l, ok := o.limiters[host]; ok {
		return l
	}
	perHost := o.config.RatePerHost
	if perHost <= 0 {
		perHost = 2.0
	}
	l := rate.NewLimiter(rate.Limit(perHost), 1)
	o.limiters[host] = l
	return l
}

type companyResult struct {
	source models.CompanySource
	jobs   []models.Job
	err    error
}

// Run executes one full ingestion pass over the given sources
func (o *Orchestrator) Run(ctx context.Context, sources []models.CompanySource) (*Result, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	started := time.Now()
	result := &Result{Companies: len(sources), StartedAt: started}

	o.publish(interfaces.EventIngestStarted, map[string]interface{}{"companies": len(sources)})
	o.logger.Info().Int("companies", len(sources)).Msg("Ingestion run started")

	concurrency := int64(o.config.Concurrency)
	if concurrency <= 0 {
		concurrency = 8
	}
	sem := semaphore.NewWeighted(concurrency)
	results := make([]companyResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			jobs, err := o.fetchCompany(gctx, src)
			results[i] = companyResult{source: src, jobs: jobs, err: err}
			// Per-company failures are recorded, never fatal to the run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	// Merge, annotate, and record per-company status
	statuses, err := o.loadStatuses()
	if err != nil {
		return result, err
	}
	var merged []models.Job
	for _, cr := range results {
		key := o.profile + ":" + cr.source.Company
		status := models.CompanyFetchStatus{
			Company:   cr.source.Company,
			Industry:  cr.source.Industry,
			ATS:       cr.source.ATS,
			URL:       cr.source.BoardURL,
			CheckedAt: time.Now(),
		}
		if cr.err != nil {
			status.Error = cr.err.Error()
			result.Failed++
			o.logger.Warn().
				Str("company", cr.source.Company).
				Err(cr.err).
				Msg("Company fetch failed")
		} else {
			status.OK = true
			status.JobCount = len(cr.jobs)
			result.Succeeded++
			result.Fetched += len(cr.jobs)
			for j := range cr.jobs {
				o.annotate(&cr.jobs[j], cr.source)
			}
			merged = append(merged, cr.jobs...)
		}
		statuses[key] = status
		o.publish(interfaces.EventIngestCompany, map[string]interface{}{
			"company": cr.source.Company,
			"ok":      status.OK,
			"jobs":    status.JobCount,
		})
	}
	if err := kernel.Save(o.statusPath, statuses); err != nil {
		return result, err
	}

	added, err := o.store.AddBulk(merged, models.JobStatusNew)
	if err != nil {
		return result, err
	}
	result.Added = added

	// Liveness: every observed id is refreshed before the sweeper runs
	observed := make(map[string]bool, len(merged))
	ids := make([]string, 0, len(merged))
	for _, j := range merged {
		observed[j.ID] = true
		ids = append(ids, j.ID)
	}
	if err := o.store.UpdateLastSeenBulk(ids); err != nil {
		return result, err
	}

	threshold := o.config.MissingThreshold
	if threshold <= 0 {
		threshold = 3
	}
	swept, err := o.store.MarkMissing(observed, threshold)
	if err != nil {
		return result, err
	}
	result.Swept = len(swept)
	for _, j := range swept {
		o.publish(interfaces.EventSweeperFlagged, map[string]interface{}{
			"id":      j.ID,
			"company": j.Company,
			"title":   j.Title,
		})
	}

	result.Duration = time.Since(started).Round(time.Millisecond).String()
	o.publish(interfaces.EventIngestCompleted, map[string]interface{}{
		"added":    result.Added,
		"fetched":  result.Fetched,
		"failed":   result.Failed,
		"swept":    result.Swept,
		"duration": result.Duration,
	})
	o.logger.Info().
		Int("fetched", result.Fetched).
		Int("added", result.Added).
		Int("failed", result.Failed).
		Int("swept", result.Swept).
		Str("duration", result.Duration).
		Msg("Ingestion run completed")

	return result, nil
}

// fetchCompany resolves the parser for one source and runs it under the
// host's rate limit
func (o *Orchestrator) fetchCompany(ctx context.Context, src models.CompanySource) ([]models.Job, error) {
	tag := src.ATS
	if tag == "" {
		tag = o.registry.DetectATS(src.BoardURL)
	}
	parser, ok := o.registry.Get(tag)
	if !ok {
		if o.discovery != nil {
			if err := o.discovery.Scan(ctx, src.Company, src.BoardURL); err != nil {
				o.logger.Debug().Err(err).Str("company", src.Company).Msg("Discovery scan failed")
			}
		}
		return nil, &ats.PermanentError{Op: "resolve parser for " + src.Company, Err: errUnsupportedATS(tag)}
	}

	if err := o.hostLimiter(src.BoardURL).Wait(ctx); err != nil {
		return nil, err
	}
	return parser.Parse(ctx, src.Company, src.BoardURL)
}

// annotate attaches source configuration and derived classification to a
// freshly fetched job
func (o *Orchestrator) annotate(job *models.Job, src models.CompanySource) {
	job.Industry = src.Industry
	job.CompanyPriority = src.Priority
	job.HQState = src.HQState
	job.Tags = src.Tags

	job.LocationNorm = normalize.Location(job.Location)
	job.RoleFamily, job.RoleConfidence = normalize.Role(job.Title, "", o.scoring.AmbiguousLeadConfidence)
	job.GeoBucket, job.GeoScore = normalize.Geo(job.LocationNorm, o.scoring)
}

func (o *Orchestrator) loadStatuses() (map[string]models.CompanyFetchStatus, error) {
	statuses := map[string]models.CompanyFetchStatus{}
	if err := kernel.Load(o.statusPath, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// Statuses returns the recorded per-company fetch statuses
func (o *Orchestrator) Statuses() (map[string]models.CompanyFetchStatus, error) {
	return o.loadStatuses()
}

func (o *Orchestrator) publish(t interfaces.EventType, payload map[string]interface{}) {
	if o.events == nil {
		return
	}
	o.events.Publish(interfaces.Event{Type: t, Timestamp: time.Now(), Payload: payload})
}

type errUnsupportedATS string

func (e errUnsupportedATS) Error() string {
	if e == "" {
		return "unsupported ATS"
	}
	return "unsupported ATS: " + string(e)
}
