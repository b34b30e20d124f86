package geo

import (
	"encoding/json"
	"fmt"
)

// Geometry is a GeoJSON Polygon or MultiPolygon. Both are normalized to a
// MultiPolygon internally; Type is preserved for round-tripping.
type Geometry struct {
	Type     string
	Polygons MultiPolygon
}

// Feature is a GeoJSON feature with free-form properties.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is the join engine's output format.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps features in a valid FeatureCollection.
// A nil slice becomes an empty (never null) features array.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// NewFeature builds a feature around geom with the given properties.
func NewFeature(geom Geometry, props map[string]any) Feature {
	if props == nil {
		props = map[string]any{}
	}
	return Feature{Type: "Feature", Geometry: geom, Properties: props}
}

func (pt Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{pt.Lng, pt.Lat})
}

func (pt *Point) UnmarshalJSON(b []byte) error {
	var raw []float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	// Positions with missing components are kept as zero-valued points;
	// the containment test treats their rings as degenerate.
	if len(raw) >= 2 {
		pt.Lng, pt.Lat = raw[0], raw[1]
	}
	return nil
}

func (g Geometry) MarshalJSON() ([]byte, error) {
	switch g.Type {
	case "Polygon":
		var poly Polygon
		if len(g.Polygons) > 0 {
			poly = g.Polygons[0]
		}
		return json.Marshal(struct {
			Type        string  `json:"type"`
			Coordinates Polygon `json:"coordinates"`
		}{Type: "Polygon", Coordinates: poly})
	default:
		return json.Marshal(struct {
			Type        string       `json:"type"`
			Coordinates MultiPolygon `json:"coordinates"`
		}{Type: "MultiPolygon", Coordinates: g.Polygons})
	}
}

func (g *Geometry) UnmarshalJSON(b []byte) error {
	var head struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	switch head.Type {
	case "Polygon":
		var poly Polygon
		if err := json.Unmarshal(head.Coordinates, &poly); err != nil {
			return fmt.Errorf("decode polygon coordinates: %w", err)
		}
		g.Type = "Polygon"
		g.Polygons = MultiPolygon{poly}
	case "MultiPolygon":
		var mp MultiPolygon
		if err := json.Unmarshal(head.Coordinates, &mp); err != nil {
			return fmt.Errorf("decode multipolygon coordinates: %w", err)
		}
		g.Type = "MultiPolygon"
		g.Polygons = mp
	default:
		return fmt.Errorf("unsupported geometry type %q", head.Type)
	}
	return nil
}

// Contains reports whether pt lies inside the geometry.
func (g Geometry) Contains(pt Point) bool {
	return g.Polygons.Contains(pt)
}

// Centroid returns a representative interior-ish point for the geometry.
func (g Geometry) Centroid() Point {
	return g.Polygons.Centroid()
}

// Bounds returns the geometry's bounding box.
func (g Geometry) Bounds() Bounds {
	return g.Polygons.Bounds()
}
