package models

import "time"

// CompanySource is one configured (company, ats, board_url) triple to ingest
type CompanySource struct {
	Company  string   `json:"company" yaml:"company"`
	ATS      string   `json:"ats" yaml:"ats"`
	BoardURL string   `json:"board_url" yaml:"board_url"`
	Industry string   `json:"industry,omitempty" yaml:"industry,omitempty"`
	Priority int      `json:"priority,omitempty" yaml:"priority,omitempty"`
	HQState  string   `json:"hq_state,omitempty" yaml:"hq_state,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Disabled bool     `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// CompanyFetchStatus records the outcome of the last ingestion attempt for a
// company, keyed by "<profile>:<company>"
type CompanyFetchStatus struct {
	Company   string    `json:"company"`
	Industry  string    `json:"industry,omitempty"`
	ATS       string    `json:"ats"`
	URL       string    `json:"url"`
	OK        bool      `json:"last_ok"`
	Error     string    `json:"last_error,omitempty"`
	JobCount  int       `json:"job_count"`
	CheckedAt time.Time `json:"last_checked"`
}

// JobInfo is the page-extracted description of the posting being applied to,
// used for cover-letter personalization and oracle context
type JobInfo struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// KnowledgeBase holds reusable answer material fed to the oracle as context
type KnowledgeBase struct {
	ExperienceSnippets []string          `json:"experience_snippets,omitempty"`
	CommonAnswers      map[string]string `json:"common_answers,omitempty"`
	Skills             []string          `json:"skills,omitempty"`
	Achievements       []string          `json:"achievements,omitempty"`
}

// AutofillSession is the persisted audit record of one autofill run
type AutofillSession struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	JobID       string    `json:"job_id,omitempty"`
	Profile     string    `json:"profile"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	Fields      int       `json:"fields"`
	Filled      int       `json:"filled"`
	Verified    int       `json:"verified"`
	NeedsInput  int       `json:"needs_input"`
	Errors      int       `json:"errors"`
	Learned     int       `json:"learned"`
	Error       string    `json:"error,omitempty"`
}

// OracleAudit is one persisted record of an oracle call
type OracleAudit struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Kind      string    `json:"kind"` // generate, choose_option, vision
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Err       string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
	CreatedAt time.Time `json:"created_at"`
}
