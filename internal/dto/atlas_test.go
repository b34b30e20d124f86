package dto

import (
	"testing"

	"github.com/electionwatch/atlas-backend/pkg/helpers"
)

func TestCacheKey_DistinguishesFilters(t *testing.T) {
	base := ChoroplethQuery{Level: 3}
	variants := []ChoroplethQuery{
		{Level: 4},
		{Level: 3, ParentID: helpers.Ptr(int64(5))},
		{Level: 3, CategoryIDs: []int64{1, 2}},
		{Level: 3, Severity: "high"},
		{Level: 3, StartDate: "2026-01-01"},
		{Level: 3, EndDate: "2026-02-01"},
	}
	seen := map[string]bool{base.CacheKey(): true}
	for _, q := range variants {
		key := q.CacheKey()
		if seen[key] {
			t.Fatalf("query %+v collides with an earlier key %q", q, key)
		}
		seen[key] = true
	}
}

func TestCacheKey_Stable(t *testing.T) {
	q := ChoroplethQuery{Level: 3, ParentID: helpers.Ptr(int64(5)), Severity: "low"}
	if q.CacheKey() != q.CacheKey() {
		t.Fatal("cache key must be deterministic")
	}
}
