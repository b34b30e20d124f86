package geo

import (
	"encoding/json"
	"testing"
)

// unit square from (0,0) to (10,10)
func square() Polygon {
	return Polygon{Ring{
		{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0},
	}}
}

func TestPolygonContains_Inside(t *testing.T) {
	p := square()
	if !p.Contains(Point{Lng: 5, Lat: 5}) {
		t.Fatal("expected interior point to be contained")
	}
}

func TestPolygonContains_Outside(t *testing.T) {
	p := square()
	for _, pt := range []Point{{Lng: 15, Lat: 5}, {Lng: -3, Lat: 5}, {Lng: 5, Lat: 200}} {
		if p.Contains(pt) {
			t.Fatalf("expected %+v to be outside", pt)
		}
	}
}

func TestPolygonContains_Hole(t *testing.T) {
	p := square()
	hole := Ring{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}}
	p = append(p, hole)

	if p.Contains(Point{Lng: 5, Lat: 5}) {
		t.Fatal("point inside hole should not be contained")
	}
	if !p.Contains(Point{Lng: 2, Lat: 2}) {
		t.Fatal("point between hole and exterior should be contained")
	}
}

func TestPolygonContains_DegenerateRing(t *testing.T) {
	p := Polygon{Ring{{0, 0}, {1, 1}}} // two vertices, not a polygon
	if p.Contains(Point{Lng: 0.5, Lat: 0.5}) {
		t.Fatal("degenerate ring must not contain anything")
	}
	var empty Polygon
	if empty.Contains(Point{}) {
		t.Fatal("empty polygon must not contain anything")
	}
}

func TestMultiPolygonContains_AnyMember(t *testing.T) {
	m := MultiPolygon{
		square(),
		{Ring{{20, 20}, {30, 20}, {30, 30}, {20, 30}, {20, 20}}},
	}
	if !m.Contains(Point{Lng: 25, Lat: 25}) {
		t.Fatal("point inside second member should be contained")
	}
	if m.Contains(Point{Lng: 15, Lat: 15}) {
		t.Fatal("point between members should not be contained")
	}
}

func TestCentroid_IsContained(t *testing.T) {
	p := square()
	c := p.Centroid()
	if c.Lng != 5 || c.Lat != 5 {
		t.Fatalf("expected centroid (5,5), got (%v,%v)", c.Lng, c.Lat)
	}
	if !p.Contains(c) {
		t.Fatal("centroid of a convex polygon must be contained by it")
	}
}

func TestCentroid_DegenerateFallsBackToVertexAverage(t *testing.T) {
	// All vertices collinear: zero area.
	p := Polygon{Ring{{0, 0}, {2, 2}, {4, 4}}}
	c := p.Centroid()
	if c.Lng != 2 || c.Lat != 2 {
		t.Fatalf("expected vertex average (2,2), got (%v,%v)", c.Lng, c.Lat)
	}
}

func TestMultiPolygonCentroid_LargestMember(t *testing.T) {
	small := Polygon{Ring{{100, 100}, {101, 100}, {101, 101}, {100, 101}, {100, 100}}}
	m := MultiPolygon{small, square()}
	c := m.Centroid()
	if c.Lng != 5 || c.Lat != 5 {
		t.Fatalf("expected centroid of larger member, got (%v,%v)", c.Lng, c.Lat)
	}
}

func TestBounds(t *testing.T) {
	m := MultiPolygon{square()}
	b := m.Bounds()
	want := Bounds{MinLng: 0, MinLat: 0, MaxLng: 10, MaxLat: 10}
	if b != want {
		t.Fatalf("bounds = %+v, want %+v", b, want)
	}

	ext := b.Extend(Bounds{MinLng: -5, MinLat: 2, MaxLng: 3, MaxLat: 20})
	want = Bounds{MinLng: -5, MinLat: 0, MaxLng: 10, MaxLat: 20}
	if ext != want {
		t.Fatalf("extended bounds = %+v, want %+v", ext, want)
	}
}

func TestGeometryJSON_Polygon(t *testing.T) {
	raw := `{"type":"Polygon","coordinates":[[[32.5,0.3],[32.7,0.3],[32.7,0.5],[32.5,0.5],[32.5,0.3]]]}`
	var g Geometry
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if g.Type != "Polygon" || len(g.Polygons) != 1 {
		t.Fatalf("unexpected geometry: %+v", g)
	}
	if !g.Contains(Point{Lng: 32.6, Lat: 0.4}) {
		t.Fatal("decoded polygon should contain its interior point")
	}

	out, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again Geometry
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if again.Type != "Polygon" {
		t.Fatalf("type not preserved, got %q", again.Type)
	}
}

func TestGeometryJSON_UnsupportedType(t *testing.T) {
	var g Geometry
	err := json.Unmarshal([]byte(`{"type":"Point","coordinates":[1,2]}`), &g)
	if err == nil {
		t.Fatal("expected error for unsupported geometry type")
	}
}

func TestNewFeatureCollection_NeverNullFeatures(t *testing.T) {
	fc := NewFeatureCollection(nil)
	b, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"type":"FeatureCollection","features":[]}` {
		t.Fatalf("unexpected empty collection encoding: %s", b)
	}
}
