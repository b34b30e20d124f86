package services

import (
	"context"
	"time"

	"github.com/electionwatch/atlas-backend/internal/dto"
	"github.com/electionwatch/atlas-backend/internal/errs"
	"github.com/electionwatch/atlas-backend/internal/geo"
	"github.com/electionwatch/atlas-backend/internal/metrics"
	"github.com/electionwatch/atlas-backend/internal/models"
	"github.com/electionwatch/atlas-backend/pkg/logger"
)

const choroplethMetric = "incidentCount"

// atlasStatStore is the Postgres storage interface for statistics.
type atlasStatStore interface {
	StatisticsByLevel(ctx context.Context, level int, parentID *int64) ([]models.UnitStatistic, error)
	IncidentCounts(ctx context.Context, q dto.ChoroplethQuery) ([]models.UnitStatistic, error)
	UnitByID(ctx context.Context, id int64) (*models.AdministrativeUnit, error)
}

// atlasBoundaries is the slice of the boundary cache the service needs.
type atlasBoundaries interface {
	BoundariesForLevel(level int) []models.BoundaryGeometry
	HasLevel(level int) bool
	LocateDistrict(pt geo.Point) (models.BoundaryGeometry, bool)
}

type atlasJoiner interface {
	Join(ctx context.Context, level int, parent *ParentFilter, stats []models.UnitStatistic, metric MetricSpec) (JoinResult, error)
}

// choroplethCache is the read-through cache for pre-joined responses.
type choroplethCache interface {
	Get(ctx context.Context, key string) (*dto.ChoroplethResult, bool)
	Set(ctx context.Context, key string, result *dto.ChoroplethResult)
}

type atlasService struct {
	stats      atlasStatStore
	boundaries atlasBoundaries
	joiner     atlasJoiner
	cache      choroplethCache
}

func NewAtlasService(stats atlasStatStore, boundaries atlasBoundaries, joiner atlasJoiner, cache choroplethCache) *atlasService {
	return &atlasService{stats: stats, boundaries: boundaries, joiner: joiner, cache: cache}
}

// StatisticsByLevel serves the statistics-by-level contract: a flat list
// of per-unit metric values for one level, optionally scoped to a parent.
func (s *atlasService) StatisticsByLevel(ctx context.Context, level int, parentID *int64) (dto.StatisticsResult, error) {
	metrics.StatisticsRequestsTotal.Inc()
	if err := validateQueryLevel(level); err != nil {
		return dto.StatisticsResult{}, err
	}
	if parentID != nil {
		if _, err := s.stats.UnitByID(ctx, *parentID); err != nil {
			return dto.StatisticsResult{}, err
		}
	}
	stats, err := s.stats.StatisticsByLevel(ctx, level, parentID)
	if err != nil {
		return dto.StatisticsResult{}, err
	}
	return dto.StatisticsResult{Level: level, ParentID: parentID, Statistics: stats}, nil
}

// Choropleth is the server-side join path used by the incidents map when
// filters are active: it joins filtered incident counts to boundaries and
// returns a pre-joined FeatureCollection plus metadata.
func (s *atlasService) Choropleth(ctx context.Context, q dto.ChoroplethQuery) (dto.ChoroplethResult, error) {
	metrics.ChoroplethRequestsTotal.Inc()
	start := time.Now()
	if err := validateQueryLevel(q.Level); err != nil {
		return dto.ChoroplethResult{}, err
	}
	if err := validateChoroplethFilters(q); err != nil {
		return dto.ChoroplethResult{}, err
	}

	key := q.CacheKey()
	if cached, ok := s.cache.Get(ctx, key); ok {
		metrics.CacheHitsTotal.Inc()
		return *cached, nil
	}
	metrics.CacheMissesTotal.Inc()

	var parent *ParentFilter
	if q.ParentID != nil {
		unit, err := s.stats.UnitByID(ctx, *q.ParentID)
		if err != nil {
			return dto.ChoroplethResult{}, err
		}
		parent = &ParentFilter{Level: unit.Level, Name: unit.Name}
	}

	counts, err := s.stats.IncidentCounts(ctx, q)
	if err != nil {
		return dto.ChoroplethResult{}, err
	}

	spec, _ := MetricSpecFor(choroplethMetric)
	joined, err := s.joiner.Join(ctx, q.Level, parent, counts, spec)
	if err != nil {
		return dto.ChoroplethResult{}, err
	}

	result := dto.ChoroplethResult{
		FeatureCollection: joined.Collection,
		PaintExpression:   joined.PaintExpression,
		Meta: dto.ChoroplethMeta{
			TotalCount:    int(joined.TotalValue),
			UnitsWithData: joined.UnitsWithData,
			MaxPerUnit:    joined.MaxValue,
		},
	}
	s.cache.Set(ctx, key, &result)

	logger.FromContext(ctx).Debug("choropleth computed",
		"level", q.Level,
		"features", len(joined.Collection.Features),
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// BoundariesForLevel serves the static boundary bundle for one level as a
// bare FeatureCollection, no statistics attached.
func (s *atlasService) BoundariesForLevel(ctx context.Context, level int) (geo.FeatureCollection, error) {
	if err := validateQueryLevel(level); err != nil {
		return geo.FeatureCollection{}, err
	}
	boundaries := s.boundaries.BoundariesForLevel(level)
	features := make([]geo.Feature, 0, len(boundaries))
	for _, b := range boundaries {
		features = append(features, geo.NewFeature(b.Geometry, map[string]any{
			"unitId":     b.UnitID,
			"name":       b.Name,
			"parentName": b.ParentName,
			"level":      b.Level,
		}))
	}
	return geo.NewFeatureCollection(features), nil
}

// Locate resolves a raw coordinate to its containing district, the same
// geometric fallback the drill-down engine uses for base-map clicks.
func (s *atlasService) Locate(ctx context.Context, pt geo.Point) (dto.LocateResult, error) {
	district, ok := s.boundaries.LocateDistrict(pt)
	if !ok {
		return dto.LocateResult{}, errs.NewNotFoundError("no district contains the given point")
	}
	return dto.LocateResult{
		UnitID:   district.UnitID,
		Name:     district.Name,
		Level:    district.Level,
		Centroid: district.Geometry.Centroid(),
		Bounds:   district.Geometry.Bounds(),
	}, nil
}

// MetricTypes returns the catalog of displayable metrics and their scale
// policies.
func (s *atlasService) MetricTypes(_ context.Context) []MetricSpec {
	return MetricSpecs()
}

func validateQueryLevel(level int) error {
	if level < models.RootLevel || level > models.MaxLevel {
		return errs.NewValidationError("level must be between 2 (district) and 5 (parish)")
	}
	return nil
}

func validateChoroplethFilters(q dto.ChoroplethQuery) error {
	switch q.Severity {
	case "", "low", "medium", "high":
	default:
		return errs.NewValidationError(`severity must be one of: low, medium, high`)
	}
	for _, d := range []string{q.StartDate, q.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return errs.NewValidationError("dates must be formatted YYYY-MM-DD")
		}
	}
	return nil
}
