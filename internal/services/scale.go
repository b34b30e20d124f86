package services

import (
	"math"

	"github.com/electionwatch/atlas-backend/internal/geo"
)

// Scale policies. Percentage metrics keep fixed thresholds so views stay
// comparable across queries; count metrics stretch to the live range so
// each view keeps visual contrast.
const (
	ScaleStatic  = "static"
	ScaleDynamic = "dynamic"
)

// Range defaults when a view has no positive values at all.
const (
	defaultRangeMin = 0
	defaultRangeMax = 100
)

// ColorScale maps ascending numeric stops to a color ramp of equal length.
type ColorScale struct {
	Stops  []float64 `json:"stops"`
	Colors []string  `json:"colors"`
}

// MetricSpec describes one displayable metric: where its value lives in
// feature properties and how its color scale is produced. Consulting this
// table replaces per-call-site branching on metric names.
type MetricSpec struct {
	Name        string     `json:"name"`
	PropertyKey string     `json:"propertyKey"`
	ScalePolicy string     `json:"scalePolicy"`
	StaticScale *ColorScale `json:"staticScale,omitempty"`
}

// countRamp is the shared ramp for dynamically scaled count metrics.
var countRamp = []string{"#ffffb2", "#fed976", "#feb24c", "#fd8d3c", "#f03b20", "#bd0026"}

// percentScale is the fixed table for bounded percentage metrics.
var percentScale = ColorScale{
	Stops:  []float64{0, 35, 45, 50, 55, 65},
	Colors: []string{"#f1eef6", "#d0d1e6", "#a6bddb", "#74a9cf", "#2b8cbe", "#045a8d"},
}

var metricTable = map[string]MetricSpec{
	"population": {
		Name: "population", PropertyKey: "population", ScalePolicy: ScaleDynamic,
	},
	"households": {
		Name: "households", PropertyKey: "households", ScalePolicy: ScaleDynamic,
	},
	"registeredVoters": {
		Name: "registeredVoters", PropertyKey: "registeredVoters", ScalePolicy: ScaleDynamic,
	},
	"incidentCount": {
		Name: "incidentCount", PropertyKey: "incidentCount", ScalePolicy: ScaleDynamic,
	},
	"votingAgePercent": {
		Name: "votingAgePercent", PropertyKey: "votingAgePercent",
		ScalePolicy: ScaleStatic, StaticScale: &percentScale,
	},
	"malePercent": {
		Name: "malePercent", PropertyKey: "malePercent",
		ScalePolicy: ScaleStatic, StaticScale: &percentScale,
	},
}

// MetricSpecFor looks up a metric by name.
func MetricSpecFor(name string) (MetricSpec, bool) {
	spec, ok := metricTable[name]
	return spec, ok
}

// MetricSpecs returns the full metric catalog in no particular order.
func MetricSpecs() []MetricSpec {
	out := make([]MetricSpec, 0, len(metricTable))
	for _, spec := range metricTable {
		out = append(out, spec)
	}
	return out
}

// ComputeRange scans feature properties for the live range of property.
// Zero, negative and non-numeric values are "no data", not legitimate
// lows: counting them would collapse the low end of the scale in filtered
// views where most units have nothing recorded.
func ComputeRange(features []geo.Feature, property string) (min, max float64) {
	found := false
	for _, f := range features {
		v, ok := numericProperty(f, property)
		if !ok || v <= 0 {
			continue
		}
		if !found {
			min, max = v, v
			found = true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if !found {
		return defaultRangeMin, defaultRangeMax
	}
	if min == max {
		// A zero-width range makes the interpolation degenerate.
		max = min + 1
	}
	return min, max
}

// GenerateStops returns n integer stops evenly spaced over [min, max],
// inclusive of both ends.
func GenerateStops(min, max float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{math.Round(min)}
	}
	stops := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := 0; i < n; i++ {
		stops[i] = math.Round(min + step*float64(i))
	}
	stops[0] = math.Round(min)
	stops[n-1] = math.Round(max)
	return stops
}

// ScaleFor produces the color scale for a metric over the given features:
// the fixed table for static metrics, live-range stops otherwise.
func ScaleFor(spec MetricSpec, features []geo.Feature) ColorScale {
	if spec.ScalePolicy == ScaleStatic && spec.StaticScale != nil {
		return *spec.StaticScale
	}
	min, max := ComputeRange(features, spec.PropertyKey)
	return ColorScale{
		Stops:  GenerateStops(min, max, len(countRamp)),
		Colors: countRamp,
	}
}

// ColorFor returns the color of the greatest stop not exceeding v. Values
// below the first stop get the first color.
func (s ColorScale) ColorFor(v float64) string {
	if len(s.Stops) == 0 || len(s.Colors) == 0 {
		return ""
	}
	color := s.Colors[0]
	for i, stop := range s.Stops {
		if v < stop {
			break
		}
		if i < len(s.Colors) {
			color = s.Colors[i]
		}
	}
	return color
}

// PaintExpression renders the scale as a linear interpolate expression in
// the rendering layer's style-JSON form:
//
//	["interpolate", ["linear"], ["get", property], stop0, color0, ...]
func (s ColorScale) PaintExpression(property string) []any {
	expr := []any{"interpolate", []any{"linear"}, []any{"get", property}}
	for i, stop := range s.Stops {
		if i >= len(s.Colors) {
			break
		}
		expr = append(expr, stop, s.Colors[i])
	}
	return expr
}

func numericProperty(f geo.Feature, key string) (float64, bool) {
	raw, ok := f.Properties[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
