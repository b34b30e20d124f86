package services

import (
	"testing"

	"github.com/electionwatch/atlas-backend/internal/errs"
	"github.com/electionwatch/atlas-backend/internal/models"
	"github.com/electionwatch/atlas-backend/pkg/helpers"
)

func stat(name string, values map[string]float64) models.UnitStatistic {
	return models.UnitStatistic{Name: name, MetricValues: values}
}

func populationSpec(t *testing.T) MetricSpec {
	t.Helper()
	spec, ok := MetricSpecFor("population")
	if !ok {
		t.Fatal("population missing from metric table")
	}
	return spec
}

func TestJoin_KeepsEveryBoundary(t *testing.T) {
	svc := NewJoinService(loadedCache(t))

	stats := []models.UnitStatistic{
		stat("Kampala", map[string]float64{"population": 1650000}),
	}
	result, err := svc.Join(helpers.TestCtx(), models.LevelDistrict, nil, stats, populationSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two district boundaries in the fixture; only one had a statistic.
	if got := len(result.Collection.Features); got != 2 {
		t.Fatalf("feature count = %d, want 2 (one per boundary)", got)
	}
	for _, f := range result.Collection.Features {
		if _, ok := f.Properties["fillColor"].(string); !ok {
			t.Fatalf("feature %v missing fillColor", f.Properties["name"])
		}
		if _, ok := f.Properties["population"].(float64); !ok {
			t.Fatalf("feature %v missing zero-filled population", f.Properties["name"])
		}
	}
	if result.UnitsWithData != 1 {
		t.Fatalf("unitsWithData = %d, want 1", result.UnitsWithData)
	}
	if result.MaxValue != 1650000 {
		t.Fatalf("maxValue = %v, want 1650000", result.MaxValue)
	}
}

func TestJoin_DropsUnmatchedStatistics(t *testing.T) {
	svc := NewJoinService(loadedCache(t))

	stats := []models.UnitStatistic{
		stat("Kampala", map[string]float64{"population": 100}),
		stat("Gulu", map[string]float64{"population": 50}), // no boundary in fixture
	}
	result, err := svc.Join(helpers.TestCtx(), models.LevelDistrict, nil, stats, populationSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UnmatchedStats != 1 {
		t.Fatalf("unmatchedStats = %d, want 1", result.UnmatchedStats)
	}
	if got := len(result.Collection.Features); got != 2 {
		t.Fatalf("unmatched statistics must not add features, got %d", got)
	}
}

func TestJoin_ParentFilterDisambiguates(t *testing.T) {
	svc := NewJoinService(loadedCache(t))

	stats := []models.UnitStatistic{
		stat("Nakasero", map[string]float64{"population": 40000}),
	}
	result, err := svc.Join(helpers.TestCtx(), models.LevelSubcounty,
		&ParentFilter{Level: models.LevelDistrict, Name: "Kampala"}, stats, populationSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both districts have a Nakasero subcounty; the filter keeps one.
	if got := len(result.Collection.Features); got != 1 {
		t.Fatalf("feature count = %d, want 1", got)
	}
	f := result.Collection.Features[0]
	if f.Properties["parentName"] != "Kampala Central" {
		t.Fatalf("wrong Nakasero selected: parent %v", f.Properties["parentName"])
	}
	if f.Properties["population"] != 40000.0 {
		t.Fatalf("population = %v, want 40000", f.Properties["population"])
	}
}

func TestJoin_ParentFilterRequiredBelowRoot(t *testing.T) {
	svc := NewJoinService(loadedCache(t))
	_, err := svc.Join(helpers.TestCtx(), models.LevelSubcounty, nil, nil, populationSpec(t))
	if _, ok := err.(*errs.ValidationError); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestJoin_UnknownLevel(t *testing.T) {
	svc := NewJoinService(loadedCache(t))
	_, err := svc.Join(helpers.TestCtx(), 42, nil, nil, populationSpec(t))
	if _, ok := err.(*errs.ValidationError); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestJoin_EmptyView(t *testing.T) {
	svc := NewJoinService(loadedCache(t))

	// No parish in the fixture descends from Busiro.
	result, err := svc.Join(helpers.TestCtx(), models.LevelParish,
		&ParentFilter{Level: models.LevelConstituency, Name: "Busiro"}, nil, populationSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Empty() {
		t.Fatal("expected an empty result")
	}
}

func TestJoin_StatUnitIDWinsOverBoundary(t *testing.T) {
	svc := NewJoinService(loadedCache(t))

	stats := []models.UnitStatistic{
		{UnitID: 777, Name: "Kampala", MetricValues: map[string]float64{"population": 10}},
	}
	result, err := svc.Join(helpers.TestCtx(), models.LevelDistrict, nil, stats, populationSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range result.Collection.Features {
		if f.Properties["name"] == "Kampala" && f.Properties["unitId"] != int64(777) {
			t.Fatalf("expected statistic unit ID to win, got %v", f.Properties["unitId"])
		}
	}
}
