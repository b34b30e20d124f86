package services

import (
	"context"
	"testing"

	"github.com/electionwatch/atlas-backend/internal/dto"
	"github.com/electionwatch/atlas-backend/internal/errs"
	"github.com/electionwatch/atlas-backend/internal/geo"
	"github.com/electionwatch/atlas-backend/internal/models"
	"github.com/electionwatch/atlas-backend/pkg/helpers"
)

// --- Fakes ---

type fakeStatStore struct {
	units          map[int64]*models.AdministrativeUnit
	statsByLevel   []models.UnitStatistic
	incidentCounts []models.UnitStatistic
	incidentCalls  int
	statsErr       error
}

func (f *fakeStatStore) StatisticsByLevel(_ context.Context, _ int, _ *int64) ([]models.UnitStatistic, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.statsByLevel, nil
}

func (f *fakeStatStore) IncidentCounts(_ context.Context, _ dto.ChoroplethQuery) ([]models.UnitStatistic, error) {
	f.incidentCalls++
	return f.incidentCounts, nil
}

func (f *fakeStatStore) UnitByID(_ context.Context, id int64) (*models.AdministrativeUnit, error) {
	if u, ok := f.units[id]; ok {
		return u, nil
	}
	return nil, errs.NewNotFoundError("unit not found")
}

type fakeChoroCache struct {
	entries map[string]*dto.ChoroplethResult
	sets    int
}

func newFakeChoroCache() *fakeChoroCache {
	return &fakeChoroCache{entries: map[string]*dto.ChoroplethResult{}}
}

func (c *fakeChoroCache) Get(_ context.Context, key string) (*dto.ChoroplethResult, bool) {
	r, ok := c.entries[key]
	return r, ok
}

func (c *fakeChoroCache) Set(_ context.Context, key string, result *dto.ChoroplethResult) {
	c.sets++
	c.entries[key] = result
}

func newTestAtlas(t *testing.T, store *fakeStatStore, cache *fakeChoroCache) *atlasService {
	t.Helper()
	boundaries := loadedCache(t)
	return NewAtlasService(store, boundaries, NewJoinService(boundaries), cache)
}

func incidents(pairs map[string]float64) []models.UnitStatistic {
	out := make([]models.UnitStatistic, 0, len(pairs))
	for name, n := range pairs {
		out = append(out, stat(name, map[string]float64{"incidentCount": n}))
	}
	return out
}

// --- Tests ---

func TestChoropleth_ComputesMeta(t *testing.T) {
	store := &fakeStatStore{incidentCounts: incidents(map[string]float64{"Kampala": 7, "Wakiso": 3})}
	cache := newFakeChoroCache()
	svc := newTestAtlas(t, store, cache)

	q := dto.ChoroplethQuery{Level: models.LevelDistrict}
	result, err := svc.Choropleth(helpers.TestCtx(), q)
	if err != nil {
		t.Fatalf("choropleth: %v", err)
	}

	if got := len(result.FeatureCollection.Features); got != 2 {
		t.Fatalf("feature count = %d, want 2", got)
	}
	if result.Meta.TotalCount != 10 {
		t.Fatalf("totalCount = %d, want 10", result.Meta.TotalCount)
	}
	if result.Meta.UnitsWithData != 2 {
		t.Fatalf("unitsWithData = %d, want 2", result.Meta.UnitsWithData)
	}
	if result.Meta.MaxPerUnit != 7 {
		t.Fatalf("maxPerUnit = %v, want 7", result.Meta.MaxPerUnit)
	}
	if len(result.PaintExpression) == 0 {
		t.Fatal("missing paint expression")
	}
	if cache.sets != 1 {
		t.Fatalf("expected the result to be cached once, sets = %d", cache.sets)
	}
	if _, ok := cache.entries[q.CacheKey()]; !ok {
		t.Fatal("result cached under the wrong key")
	}
}

func TestChoropleth_CacheHitSkipsStore(t *testing.T) {
	store := &fakeStatStore{incidentCounts: incidents(map[string]float64{"Kampala": 7})}
	cache := newFakeChoroCache()
	svc := newTestAtlas(t, store, cache)

	q := dto.ChoroplethQuery{Level: models.LevelDistrict}
	cached := dto.ChoroplethResult{Meta: dto.ChoroplethMeta{TotalCount: 99}}
	cache.entries[q.CacheKey()] = &cached

	result, err := svc.Choropleth(helpers.TestCtx(), q)
	if err != nil {
		t.Fatalf("choropleth: %v", err)
	}
	if result.Meta.TotalCount != 99 {
		t.Fatalf("expected the cached result, got %+v", result.Meta)
	}
	if store.incidentCalls != 0 {
		t.Fatal("a cache hit must not query the store")
	}
}

func TestChoropleth_ParentScoped(t *testing.T) {
	store := &fakeStatStore{
		units: map[int64]*models.AdministrativeUnit{
			5: {ID: 5, Name: "Kampala", Level: models.LevelDistrict},
		},
		incidentCounts: incidents(map[string]float64{"Kampala Central": 4}),
	}
	svc := newTestAtlas(t, store, newFakeChoroCache())

	result, err := svc.Choropleth(helpers.TestCtx(), dto.ChoroplethQuery{
		Level:    models.LevelConstituency,
		ParentID: helpers.Ptr(int64(5)),
	})
	if err != nil {
		t.Fatalf("choropleth: %v", err)
	}
	if got := len(result.FeatureCollection.Features); got != 1 {
		t.Fatalf("feature count = %d, want only Kampala's constituency", got)
	}
	if name := result.FeatureCollection.Features[0].Properties["name"]; name != "Kampala Central" {
		t.Fatalf("feature = %v", name)
	}
}

func TestChoropleth_UnknownParent(t *testing.T) {
	svc := newTestAtlas(t, &fakeStatStore{}, newFakeChoroCache())

	_, err := svc.Choropleth(helpers.TestCtx(), dto.ChoroplethQuery{
		Level:    models.LevelConstituency,
		ParentID: helpers.Ptr(int64(404)),
	})
	if _, ok := err.(*errs.NotFoundError); !ok {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestChoropleth_ValidatesQuery(t *testing.T) {
	store := &fakeStatStore{}
	svc := newTestAtlas(t, store, newFakeChoroCache())

	cases := []dto.ChoroplethQuery{
		{Level: 1},
		{Level: 9},
		{Level: models.LevelDistrict, Severity: "catastrophic"},
		{Level: models.LevelDistrict, StartDate: "25/08/2026"},
		{Level: models.LevelDistrict, EndDate: "not a date"},
	}
	for _, q := range cases {
		_, err := svc.Choropleth(helpers.TestCtx(), q)
		if _, ok := err.(*errs.ValidationError); !ok {
			t.Fatalf("query %+v: expected validation error, got %v", q, err)
		}
	}
	if store.incidentCalls != 0 {
		t.Fatal("invalid queries must not reach the store")
	}
}

func TestStatisticsByLevel(t *testing.T) {
	store := &fakeStatStore{
		units: map[int64]*models.AdministrativeUnit{
			5: {ID: 5, Name: "Kampala", Level: models.LevelDistrict},
		},
		statsByLevel: []models.UnitStatistic{
			stat("Kampala Central", map[string]float64{"population": 300000}),
		},
	}
	svc := newTestAtlas(t, store, newFakeChoroCache())

	result, err := svc.StatisticsByLevel(helpers.TestCtx(), models.LevelConstituency, helpers.Ptr(int64(5)))
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if result.Level != models.LevelConstituency || len(result.Statistics) != 1 {
		t.Fatalf("result = %+v", result)
	}

	if _, err := svc.StatisticsByLevel(helpers.TestCtx(), 1, nil); err == nil {
		t.Fatal("subregion queries are out of range")
	}
	if _, err := svc.StatisticsByLevel(helpers.TestCtx(), models.LevelConstituency, helpers.Ptr(int64(404))); err == nil {
		t.Fatal("unknown parent must error")
	}
}

func TestBoundariesForLevel(t *testing.T) {
	svc := newTestAtlas(t, &fakeStatStore{}, newFakeChoroCache())

	fc, err := svc.BoundariesForLevel(helpers.TestCtx(), models.LevelDistrict)
	if err != nil {
		t.Fatalf("boundaries: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("feature count = %d, want 2", len(fc.Features))
	}
	for _, f := range fc.Features {
		if f.Properties["level"] != models.LevelDistrict {
			t.Fatalf("feature props = %+v", f.Properties)
		}
	}

	if _, err := svc.BoundariesForLevel(helpers.TestCtx(), 0); err == nil {
		t.Fatal("level 0 must be rejected")
	}
}

func TestLocate(t *testing.T) {
	svc := newTestAtlas(t, &fakeStatStore{}, newFakeChoroCache())

	result, err := svc.Locate(helpers.TestCtx(), geo.Point{Lng: 32.5, Lat: 0.3})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if result.UnitID != 5 || result.Name != "Kampala" {
		t.Fatalf("result = %+v", result)
	}
	if result.Bounds.MinLng == result.Bounds.MaxLng {
		t.Fatalf("bounds not populated: %+v", result.Bounds)
	}

	_, err = svc.Locate(helpers.TestCtx(), geo.Point{Lng: 10, Lat: 50})
	if _, ok := err.(*errs.NotFoundError); !ok {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestMetricTypes(t *testing.T) {
	svc := newTestAtlas(t, &fakeStatStore{}, newFakeChoroCache())
	specs := svc.MetricTypes(helpers.TestCtx())
	if len(specs) == 0 {
		t.Fatal("expected a non-empty metric catalog")
	}
	seen := map[string]bool{}
	for _, s := range specs {
		seen[s.Name] = true
		if s.ScalePolicy != ScaleStatic && s.ScalePolicy != ScaleDynamic {
			t.Fatalf("metric %q has policy %q", s.Name, s.ScalePolicy)
		}
	}
	for _, name := range []string{"population", "incidentCount", "votingAgePercent"} {
		if !seen[name] {
			t.Fatalf("metric %q missing from catalog", name)
		}
	}
}
