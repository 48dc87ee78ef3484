package learned

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/storage/kernel"
)

const (
	dbFile       = "learned_database.json"
	maxKeyLength = 100
)

// fileFormat is the on-disk shape. The V3 variant stored text answers under
// "field_answers"; both keys are accepted on read, "answers" is written.
type fileFormat struct {
	Answers         map[string]string `json:"answers,omitempty"`
	FieldAnswers    map[string]string `json:"field_answers,omitempty"`
	DropdownChoices map[string]string `json:"dropdown_choices,omitempty"`
}

// DB is the persistent question -> answer memory shared across autofill
// sessions. Writes rewrite the whole file through the storage kernel.
type DB struct {
	mu        sync.Mutex
	path      string
	answers   map[string]string
	dropdowns map[string]string
	logger    arbor.ILogger
}

var _ interfaces.LearnedDB = (*DB)(nil)

// NewDB loads (or initializes) the learned database under dataDir
func NewDB(dataDir string, logger arbor.ILogger) (*DB, error) {
	db := &DB{
		path:      filepath.Join(dataDir, dbFile),
		answers:   map[string]string{},
		dropdowns: map[string]string{},
		logger:    logger,
	}

	var f fileFormat
	if err := kernel.Load(db.path, &f); err != nil {
		return nil, err
	}
	for k, v := range f.Answers {
		db.answers[NormalizeKey(k)] = v
	}
	for k, v := range f.FieldAnswers {
		db.answers[NormalizeKey(k)] = v
	}
	for k, v := range f.DropdownChoices {
		db.dropdowns[NormalizeKey(k)] = v
	}

	logger.Debug().
		Int("answers", len(db.answers)).
		Int("dropdowns", len(db.dropdowns)).
		Msg("Learned database loaded")
	return db, nil
}

// NormalizeKey produces the canonical lookup key for a field question:
// lowercased, punctuation stripped, whitespace collapsed, length capped.
// Idempotent: NormalizeKey(NormalizeKey(s)) == NormalizeKey(s).
func NormalizeKey(question string) string {
	s := strings.ToLower(strings.TrimSpace(question))
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '!', ':', '-', '_', '(', ')', '"', '\'':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	s = strings.Join(strings.Fields(b.String()), " ")
	if len(s) > maxKeyLength {
		s = strings.TrimSpace(s[:maxKeyLength])
	}
	return s
}

// lookup finds an answer for the key: exact match first, then substring
// containment in both directions against stored keys.
func lookup(m map[string]string, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	if v, ok := m[key]; ok {
		return v, true
	}
	for stored, v := range m {
		if len(stored) < 4 {
			continue
		}
		if strings.Contains(key, stored) || strings.Contains(stored, key) {
			return v, true
		}
	}
	return "", false
}

// GetText returns a learned free-text answer for the question
func (d *DB) GetText(question string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return lookup(d.answers, NormalizeKey(question))
}

// GetDropdown returns a learned dropdown choice for the question
func (d *DB) GetDropdown(question string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return lookup(d.dropdowns, NormalizeKey(question))
}

// SaveText stores a free-text answer under the normalized question key
func (d *DB) SaveText(question, answer string) error {
	key := NormalizeKey(question)
	if key == "" || answer == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.answers[key] = answer
	return d.persist()
}

// SaveDropdown stores a dropdown choice under the normalized question key
func (d *DB) SaveDropdown(question, answer string) error {
	key := NormalizeKey(question)
	if key == "" || answer == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropdowns[key] = answer
	return d.persist()
}

// Counts returns the number of stored text and dropdown answers
func (d *DB) Counts() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.answers), len(d.dropdowns)
}

// persist writes the full database. Caller holds the mutex.
func (d *DB) persist() error {
	return kernel.Save(d.path, fileFormat{
		Answers:         d.answers,
		DropdownChoices: d.dropdowns,
	})
}
