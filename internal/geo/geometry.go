package geo

// Point is a WGS84 coordinate. GeoJSON orders coordinates [lng, lat];
// the JSON codecs in this package preserve that.
type Point struct {
	Lng float64
	Lat float64
}

// Ring is a closed sequence of vertices. Closure is not enforced; the
// containment test treats the last vertex as connected to the first.
type Ring []Point

// Polygon is an exterior ring followed by zero or more hole rings.
type Polygon []Ring

// MultiPolygon is a set of disjoint polygons (islands, exclaves).
type MultiPolygon []Polygon

// Bounds is an axis-aligned bounding box, used for fitBounds calls.
type Bounds struct {
	MinLng float64 `json:"minLng"`
	MinLat float64 `json:"minLat"`
	MaxLng float64 `json:"maxLng"`
	MaxLat float64 `json:"maxLat"`
}

// contains runs one ray cast against a single ring. Degenerate rings
// (fewer than 3 vertices) never contain anything.
func (r Ring) contains(pt Point) bool {
	if len(r) < 3 {
		return false
	}
	inside := false
	j := len(r) - 1
	for i := 0; i < len(r); i++ {
		xi, yi := r[i].Lng, r[i].Lat
		xj, yj := r[j].Lng, r[j].Lat
		if (yi > pt.Lat) != (yj > pt.Lat) &&
			pt.Lng < (xj-xi)*(pt.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Contains tests pt against the polygon using the even-odd rule: each
// enclosing ring toggles containment, so holes fall out naturally.
func (p Polygon) Contains(pt Point) bool {
	inside := false
	for _, ring := range p {
		if ring.contains(pt) {
			inside = !inside
		}
	}
	return inside
}

// Contains reports whether pt lies inside any member polygon.
func (m MultiPolygon) Contains(pt Point) bool {
	for _, poly := range m {
		if poly.Contains(pt) {
			return true
		}
	}
	return false
}

// area returns the signed shoelace area of a ring in squared degrees.
// Only relative magnitude matters to callers.
func (r Ring) area() float64 {
	if len(r) < 3 {
		return 0
	}
	var sum float64
	j := len(r) - 1
	for i := 0; i < len(r); i++ {
		sum += (r[j].Lng + r[i].Lng) * (r[j].Lat - r[i].Lat)
		j = i
	}
	return sum / 2
}

// Centroid returns the area centroid of the exterior ring. Degenerate
// rings fall back to the vertex average so a marker can still be placed.
func (p Polygon) Centroid() Point {
	if len(p) == 0 || len(p[0]) == 0 {
		return Point{}
	}
	ext := p[0]
	a := ext.area()
	if a == 0 {
		var c Point
		for _, v := range ext {
			c.Lng += v.Lng
			c.Lat += v.Lat
		}
		c.Lng /= float64(len(ext))
		c.Lat /= float64(len(ext))
		return c
	}
	var cx, cy float64
	j := len(ext) - 1
	for i := 0; i < len(ext); i++ {
		cross := ext[j].Lng*ext[i].Lat - ext[i].Lng*ext[j].Lat
		cx += (ext[j].Lng + ext[i].Lng) * cross
		cy += (ext[j].Lat + ext[i].Lat) * cross
		j = i
	}
	return Point{Lng: cx / (6 * a), Lat: cy / (6 * a)}
}

// Centroid returns the centroid of the largest member polygon, which
// keeps markers on the mainland for units with small islands.
func (m MultiPolygon) Centroid() Point {
	var best Polygon
	var bestArea float64
	for _, poly := range m {
		if len(poly) == 0 {
			continue
		}
		a := poly[0].area()
		if a < 0 {
			a = -a
		}
		if best == nil || a > bestArea {
			best, bestArea = poly, a
		}
	}
	if best == nil {
		return Point{}
	}
	return best.Centroid()
}

// Bounds returns the bounding box over all member rings.
func (m MultiPolygon) Bounds() Bounds {
	b := Bounds{MinLng: 180, MinLat: 90, MaxLng: -180, MaxLat: -90}
	found := false
	for _, poly := range m {
		for _, ring := range poly {
			for _, v := range ring {
				found = true
				if v.Lng < b.MinLng {
					b.MinLng = v.Lng
				}
				if v.Lng > b.MaxLng {
					b.MaxLng = v.Lng
				}
				if v.Lat < b.MinLat {
					b.MinLat = v.Lat
				}
				if v.Lat > b.MaxLat {
					b.MaxLat = v.Lat
				}
			}
		}
	}
	if !found {
		return Bounds{}
	}
	return b
}

// Extend grows b to include other and returns the result.
func (b Bounds) Extend(other Bounds) Bounds {
	if other == (Bounds{}) {
		return b
	}
	if b == (Bounds{}) {
		return other
	}
	if other.MinLng < b.MinLng {
		b.MinLng = other.MinLng
	}
	if other.MinLat < b.MinLat {
		b.MinLat = other.MinLat
	}
	if other.MaxLng > b.MaxLng {
		b.MaxLng = other.MaxLng
	}
	if other.MaxLat > b.MaxLat {
		b.MaxLat = other.MaxLat
	}
	return b
}
