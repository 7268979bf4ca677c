package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// analyzeSchema validates the shape of an analyze request before the
// range rules run. A request names the farm either as a 4-corner polygon
// (the selection flow) or as a bounding box (the legacy client shape).
const analyzeSchema = `{
  "type": "object",
  "properties": {
    "polygon": {
      "type": "array",
      "minItems": 4,
      "maxItems": 4,
      "items": {
        "type": "object",
        "properties": {
          "lat": {"type": "number"},
          "lng": {"type": "number"}
        },
        "required": ["lat", "lng"]
      }
    },
    "bounds": {
      "type": "object",
      "properties": {
        "north": {"type": "number"},
        "south": {"type": "number"},
        "east":  {"type": "number"},
        "west":  {"type": "number"}
      },
      "required": ["north", "south", "east", "west"]
    },
    "mission": {"type": "string", "enum": ["fertilizer", "irrigation"]}
  },
  "anyOf": [
    {"required": ["polygon"]},
    {"required": ["bounds"]}
  ]
}`

var analyzeSchemaLoader = gojsonschema.NewStringLoader(analyzeSchema)

// validateAnalyzeBody runs the JSON Schema over the raw request body and
// returns a flattened message listing every violation.
func validateAnalyzeBody(raw []byte) error {
	result, err := gojsonschema.Validate(analyzeSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid analyze request: %s", strings.Join(msgs, "; "))
}

// validateBounds applies the coordinate range rules: latitudes ordered
// within ±90, longitudes ordered within ±180.
func validateBounds(b model.ZoneRegion) error {
	if !(-90 <= b.South && b.South <= b.North && b.North <= 90) {
		return fmt.Errorf("invalid latitude bounds: south %.4f, north %.4f", b.South, b.North)
	}
	if !(-180 <= b.West && b.West <= b.East && b.East <= 180) {
		return fmt.Errorf("invalid longitude bounds: west %.4f, east %.4f", b.West, b.East)
	}
	return nil
}

// validatePolygon rejects polygons with out-of-range or non-finite corners.
func validatePolygon(p model.Polygon) error {
	for i, pt := range p {
		if !pt.IsFinite() || !pt.InRange() {
			return fmt.Errorf("corner %d out of range: (%v, %v)", i+1, pt.Latitude, pt.Longitude)
		}
	}
	return nil
}

// boundsPolygon traces a bounding box as a 4-corner boundary.
func boundsPolygon(b model.ZoneRegion) model.Polygon {
	return model.Polygon{
		{Latitude: b.North, Longitude: b.West},
		{Latitude: b.North, Longitude: b.East},
		{Latitude: b.South, Longitude: b.East},
		{Latitude: b.South, Longitude: b.West},
	}
}
