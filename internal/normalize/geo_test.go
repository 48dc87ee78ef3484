package normalize

import (
	"testing"

	"github.com/ternarybob/pursuit/internal/common"
)

func scoringConfig() *common.ScoringConfig {
	return &common.ScoringConfig{
		TargetState:    "NC",
		NeighborStates: []string{"VA", "SC", "GA", "TN"},
		LocalCities:    []string{"Raleigh", "Durham", "Cary", "Chapel Hill"},
	}
}

func TestGeoBuckets(t *testing.T) {
	cfg := scoringConfig()
	tests := []struct {
		raw    string
		bucket string
		score  int
	}{
		{"Raleigh, NC", "local", 100},
		{"Charlotte, NC", "nc", 80},
		{"Richmond, VA", "neighbor", 60},
		{"Remote - USA", "remote_usa", 50},
		{"Austin, TX", "other", 0},
		{"Bangalore, India", "other", 0},
		{"", "unknown", 0},
	}
	for _, tt := range tests {
		bucket, score := Geo(Location(tt.raw), cfg)
		if bucket != tt.bucket || score != tt.score {
			t.Errorf("Geo(%q) = %s/%d, want %s/%d", tt.raw, bucket, score, tt.bucket, tt.score)
		}
	}
}

func TestGeoTargetStateWinsOverRemote(t *testing.T) {
	cfg := scoringConfig()
	bucket, score := Geo(Location("Durham, NC | Remote - USA"), cfg)
	if bucket != "local" || score != 100 {
		t.Errorf("got %s/%d, want local/100", bucket, score)
	}
}

func TestGeoNilLocation(t *testing.T) {
	bucket, score := Geo(nil, scoringConfig())
	if bucket != "unknown" || score != 0 {
		t.Errorf("got %s/%d, want unknown/0", bucket, score)
	}
}

func TestGeoCityMatchIsCaseInsensitive(t *testing.T) {
	bucket, _ := Geo(Location("raleigh, nc"), scoringConfig())
	if bucket != "local" {
		t.Errorf("bucket = %s, want local", bucket)
	}
}
