package services

import (
	"context"
	"time"

	"github.com/electionwatch/atlas-backend/internal/errs"
	"github.com/electionwatch/atlas-backend/internal/geo"
	"github.com/electionwatch/atlas-backend/internal/metrics"
	"github.com/electionwatch/atlas-backend/internal/models"
	"github.com/electionwatch/atlas-backend/pkg/logger"
)

// joinBoundarySource is the slice of the boundary cache the join needs.
type joinBoundarySource interface {
	BoundariesForLevel(level int) []models.BoundaryGeometry
	HasAncestor(b models.BoundaryGeometry, ancestorLevel int, ancestorName string) bool
}

// ParentFilter restricts a join to descendants of a named ancestor.
// Required below district level: sibling unit names are not globally
// unique (two districts may each contain a subcounty with the same name).
type ParentFilter struct {
	Level int
	Name  string
}

// JoinResult is one recomputed view: the feature collection the rendering
// layer draws, the scale that colored it, and the aggregates the incident
// endpoints report.
type JoinResult struct {
	Collection      geo.FeatureCollection
	Scale           ColorScale
	PaintExpression []any
	Bounds          geo.Bounds
	UnitsWithData   int
	MaxValue        float64
	TotalValue      float64
	UnmatchedStats  int
}

// Empty reports whether the view has no features at all. Callers must not
// add a map layer for an empty result.
func (r JoinResult) Empty() bool {
	return len(r.Collection.Features) == 0
}

type joinService struct {
	boundaries joinBoundarySource
}

func NewJoinService(boundaries joinBoundarySource) *joinService {
	return &joinService{boundaries: boundaries}
}

// Join merges per-unit statistics into the boundary geometries at level.
// Statistics without a boundary are dropped (and counted); boundaries
// without a statistic are kept with zero-valued metrics so the map stays
// fully tiled. Every output feature carries all metric values plus a
// computed fillColor.
func (s *joinService) Join(ctx context.Context, level int, parent *ParentFilter, stats []models.UnitStatistic, metric MetricSpec) (JoinResult, error) {
	if !models.ValidLevel(level) {
		return JoinResult{}, errs.NewValidationError("unknown administrative level")
	}
	if level > models.RootLevel && parent == nil {
		return JoinResult{}, errs.NewValidationError("parent filter is required below district level")
	}

	start := time.Now()
	defer func() {
		metrics.JoinDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	boundaries := s.boundaries.BoundariesForLevel(level)
	if parent != nil {
		filtered := make([]models.BoundaryGeometry, 0, len(boundaries))
		for _, b := range boundaries {
			if s.boundaries.HasAncestor(b, parent.Level, parent.Name) {
				filtered = append(filtered, b)
			}
		}
		boundaries = filtered
	}

	// Union of metric keys, so unmatched boundaries get explicit zeroes.
	metricKeys := map[string]struct{}{metric.PropertyKey: {}}
	statIndex := make(map[string]models.UnitStatistic, len(stats))
	for _, st := range stats {
		statIndex[normalizeName(st.Name)] = st
		for k := range st.MetricValues {
			metricKeys[k] = struct{}{}
		}
	}

	matched := make(map[string]struct{}, len(stats))
	features := make([]geo.Feature, 0, len(boundaries))
	var bounds geo.Bounds
	for _, b := range boundaries {
		props := map[string]any{
			"unitId":     b.UnitID,
			"name":       b.Name,
			"parentName": b.ParentName,
			"level":      b.Level,
		}
		for k := range metricKeys {
			props[k] = float64(0)
		}
		key := normalizeName(b.Name)
		if st, ok := statIndex[key]; ok {
			matched[key] = struct{}{}
			for k, v := range st.MetricValues {
				props[k] = v
			}
			if st.UnitID != 0 {
				props["unitId"] = st.UnitID
			}
		}
		features = append(features, geo.NewFeature(b.Geometry, props))
		bounds = bounds.Extend(b.Geometry.Bounds())
	}

	result := JoinResult{
		Collection:     geo.NewFeatureCollection(features),
		Bounds:         bounds,
		UnmatchedStats: len(stats) - len(matched),
	}
	if result.UnmatchedStats > 0 {
		metrics.UnmatchedStatsTotal.Add(float64(result.UnmatchedStats))
		logger.FromContext(ctx).Warn("statistics without matching boundary dropped",
			"count", result.UnmatchedStats, "level", level)
	}

	result.Scale = ScaleFor(metric, features)
	result.PaintExpression = result.Scale.PaintExpression(metric.PropertyKey)
	for i := range result.Collection.Features {
		f := &result.Collection.Features[i]
		v, _ := numericProperty(*f, metric.PropertyKey)
		f.Properties["fillColor"] = result.Scale.ColorFor(v)
		if v > 0 {
			result.UnitsWithData++
		}
		if v > result.MaxValue {
			result.MaxValue = v
		}
		result.TotalValue += v
	}

	return result, nil
}
