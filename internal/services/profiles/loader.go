package profiles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/models"
	"github.com/ternarybob/pursuit/internal/storage/kernel"
)

// Loader reads candidate profiles and the shared knowledge base from the
// profiles directory. Profiles are required and validated; the knowledge
// base is optional context for the oracle.
type Loader struct {
	config   *common.ProfilesConfig
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewLoader(config *common.ProfilesConfig, logger arbor.ILogger) *Loader {
	return &Loader{
		config:   config,
		validate: validator.New(),
		logger:   logger,
	}
}

// Load reads and validates profiles/<name>.json. An empty name loads the
// configured default profile.
func (l *Loader) Load(name string) (*models.Profile, error) {
	if name == "" {
		name = l.config.Default
	}
	path := filepath.Join(l.config.Dir, name+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", name, err)
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", name, err)
	}
	if err := l.validate.Struct(&profile); err != nil {
		return nil, fmt.Errorf("profile %s failed validation: %w", name, err)
	}

	l.logger.Info().
		Str("profile", name).
		Int("work_experience", len(profile.WorkExperience)).
		Int("education", len(profile.Education)).
		Msg("Profile loaded")
	return &profile, nil
}

// List returns the profile names available in the profiles directory
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		if name == strings.TrimSuffix(filepath.Base(l.config.KnowledgeBase), ".json") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// LoadKnowledgeBase reads the shared knowledge base. A missing file yields
// an empty knowledge base, not an error.
func (l *Loader) LoadKnowledgeBase() *models.KnowledgeBase {
	kb := &models.KnowledgeBase{}
	path := l.config.KnowledgeBase
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.config.Dir, path)
	}
	if err := kernel.Load(path, kb); err != nil {
		l.logger.Warn().Err(err).Str("path", path).Msg("Knowledge base not loaded")
	}
	return kb
}

// KnowledgeContext renders the knowledge base as oracle prompt context
func KnowledgeContext(kb *models.KnowledgeBase) string {
	if kb == nil {
		return ""
	}
	var b strings.Builder
	if len(kb.Skills) > 0 {
		b.WriteString("Skills: " + strings.Join(kb.Skills, ", ") + "\n")
	}
	for _, a := range kb.Achievements {
		b.WriteString("Achievement: " + a + "\n")
	}
	for _, s := range kb.ExperienceSnippets {
		b.WriteString(s + "\n")
	}
	for q, a := range kb.CommonAnswers {
		b.WriteString(q + ": " + a + "\n")
	}
	return b.String()
}
