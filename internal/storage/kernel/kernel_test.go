package kernel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")

	want := map[string]record{
		"a": {Name: "alpha", Count: 3},
		"b": {Name: "beta", Count: 0},
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := map[string]record{}
	if err := Load(path, &got); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 || got["a"].Name != "alpha" || got["a"].Count != 3 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadMissingFileLeavesTargetEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	got := map[string]record{}
	if err := Load(path, &got); err != nil {
		t.Fatalf("Load of missing file should not error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty target, got %+v", got)
	}
}

func TestLoadMalformedFileLeavesTargetEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	got := map[string]record{}
	if err := Load(path, &got); err != nil {
		t.Fatalf("Load of malformed file should not error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty target, got %+v", got)
	}
}

func TestSaveReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")

	if err := Save(path, map[string]record{"old": {Name: "old"}}); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, map[string]record{"new": {Name: "new"}}); err != nil {
		t.Fatal(err)
	}

	got := map[string]record{}
	if err := Load(path, &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["old"]; ok {
		t.Error("old contents survived replacement")
	}
	if got["new"].Name != "new" {
		t.Errorf("new contents missing: %+v", got)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")

	if err := Save(path, record{Name: "x"}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSaveOutputIsPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	if err := Save(path, record{Name: "x", Count: 1}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Errorf("expected indented output, got %q", string(data))
	}
}
