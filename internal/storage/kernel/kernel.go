package kernel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/pursuit/internal/common"
)

// Load reads a JSON file into target. A missing file is not an error: target
// is left untouched (callers pass it pre-initialized to the empty state). A
// malformed file is logged and treated the same way so a corrupt data file
// never takes the service down.
func Load(path string, target interface{}) error {
	logger := common.GetLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("Data file not found, starting empty")
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(data) == 0 {
		logger.Debug().Str("path", path).Msg("Data file empty, starting empty")
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Data file malformed, starting empty")
		return nil
	}

	return nil
}

// Save writes value to path atomically: marshal, write to a temp file in the
// same directory, fsync, rename over the destination, then fsync the
// directory. A crash mid-save leaves either the old file or the new file,
// never a torn one.
func Save(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	// Durability for the rename itself. Best effort: some filesystems
	// reject fsync on directories.
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}

	return nil
}
