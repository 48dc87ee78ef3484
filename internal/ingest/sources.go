package ingest

import (
	"fmt"
	"os"

	"github.com/ternarybob/pursuit/internal/models"
	"gopkg.in/yaml.v3"
)

// sourcesFile is the YAML document listing company boards to ingest
type sourcesFile struct {
	Companies []models.CompanySource `yaml:"companies"`
}

// LoadSources reads the company source list. Disabled entries are dropped.
func LoadSources(path string) ([]models.CompanySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}

	sources := make([]models.CompanySource, 0, len(f.Companies))
	for _, s := range f.Companies {
		if s.Disabled {
			continue
		}
		if s.Company == "" || s.BoardURL == "" {
			return nil, fmt.Errorf("sources file %s: entry missing company or board_url", path)
		}
		sources = append(sources, s)
	}
	return sources, nil
}
