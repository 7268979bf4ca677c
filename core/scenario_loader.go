package core

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// GameScenario is a small summary of what was loaded from JSON. It's
// mainly useful for logging or debugging from main().
type GameScenario struct {
	Zone     model.ZoneRegion
	AreaKeys []string
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type gameScenarioJSON struct {
	SpecialZone *zoneRegionJSON    `json:"special_zone"`
	Areas       []analyzedAreaJSON `json:"areas"`
}

type zoneRegionJSON struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

type analyzedAreaJSON struct {
	Key        string      `json:"key"` // optional; re-derived from centroid when empty
	Polygon    []pointJSON `json:"polygon"`
	Correct    bool        `json:"correct"`
	Special    bool        `json:"special"`
	Mission    string      `json:"mission"`
	RecordedAt string      `json:"recorded_at"` // RFC 3339; optional
}

type pointJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LoadGameScenario reads a JSON scenario from r, restores any previously
// analyzed areas into the registry (redrawing their markers and overlays),
// and returns the configured special zone plus a summary of what was
// loaded.
//
// It fails only on JSON / structural errors. Area entries reuse the
// registry's own dedup behavior: later duplicates overwrite earlier ones.
func LoadGameScenario(reg *AreaRegistry, r io.Reader) (*GameScenario, error) {
	if reg == nil {
		return nil, fmt.Errorf("LoadGameScenario: registry is nil")
	}

	var payload gameScenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadGameScenario: decode failed: %w", err)
	}

	result := &GameScenario{}
	if payload.SpecialZone != nil {
		result.Zone = model.ZoneRegion{
			North: payload.SpecialZone.North,
			South: payload.SpecialZone.South,
			East:  payload.SpecialZone.East,
			West:  payload.SpecialZone.West,
		}
		if !result.Zone.IsValid() {
			return nil, fmt.Errorf("LoadGameScenario: special_zone is not a valid rectangle")
		}
	}

	areas := make([]model.AnalyzedArea, 0, len(payload.Areas))
	for i, ja := range payload.Areas {
		polygon := make(model.Polygon, 0, len(ja.Polygon))
		for _, jp := range ja.Polygon {
			polygon = append(polygon, model.GeoPoint{Latitude: jp.Lat, Longitude: jp.Lon})
		}
		centroid := PolygonCentroid(polygon)
		key := ja.Key
		if key == "" {
			key = KeyForCentroid(centroid)
		}

		recordedAt := time.Time{}
		if ja.RecordedAt != "" {
			ts, err := time.Parse(time.RFC3339, ja.RecordedAt)
			if err != nil {
				return nil, fmt.Errorf("LoadGameScenario: area %d: bad recorded_at: %w", i, err)
			}
			recordedAt = ts
		}

		areas = append(areas, model.AnalyzedArea{
			Key:               key,
			Polygon:           polygon,
			Centroid:          centroid,
			AreaHectares:      PolygonAreaHectares(polygon),
			IsCorrectDecision: ja.Correct,
			IsSpecialZone:     ja.Special,
			Mission:           model.MissionType(ja.Mission),
			RecordedAt:        recordedAt,
		})
		result.AreaKeys = append(result.AreaKeys, key)
	}
	reg.Restore(areas)

	return result, nil
}
