package normalize

import (
	"strings"

	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/models"
)

// Geo bucket identifiers. The target-state bucket is named after the
// configured state (lowercase 2-letter code).
const (
	GeoLocal     = "local"
	GeoNeighbor  = "neighbor"
	GeoRemoteUSA = "remote_usa"
	GeoOther     = "other"
	GeoUnknown   = "unknown"
)

// Geo assigns a location to a bucket and base score:
// local=100, target-state=80, neighbor=60, remote_usa=50, other=0, unknown=0.
func Geo(loc *models.NormalizedLocation, cfg *common.ScoringConfig) (string, int) {
	if loc == nil || (loc.Raw == "" && !loc.Remote) {
		return GeoUnknown, 0
	}
	if loc.NonUS {
		return GeoOther, 0
	}

	target := strings.ToUpper(cfg.TargetState)
	targetBucket := strings.ToLower(cfg.TargetState)

	inTarget := false
	inNeighbor := false
	for _, st := range loc.States {
		if st == target {
			inTarget = true
		}
		for _, n := range cfg.NeighborStates {
			if st == strings.ToUpper(n) {
				inNeighbor = true
			}
		}
	}

	if inTarget {
		for _, city := range cfg.LocalCities {
			if strings.EqualFold(loc.City, city) {
				return GeoLocal, 100
			}
		}
		return targetBucket, 80
	}
	if inNeighbor {
		return GeoNeighbor, 60
	}
	if loc.Remote && loc.RemoteScope == "usa" {
		return GeoRemoteUSA, 50
	}
	if len(loc.States) > 0 || loc.Remote {
		return GeoOther, 0
	}
	return GeoUnknown, 0
}
