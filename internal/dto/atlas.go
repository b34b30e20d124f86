package dto

import (
	"fmt"
	"strings"

	"github.com/electionwatch/atlas-backend/internal/geo"
	"github.com/electionwatch/atlas-backend/internal/models"
)

// ChoroplethQuery is the server-side-join request used by the incidents
// map when filters are active.
type ChoroplethQuery struct {
	Level       int
	ParentID    *int64
	CategoryIDs []int64
	Severity    string
	StartDate   string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD
}

// CacheKey derives a stable cache key from the full filter set.
func (q ChoroplethQuery) CacheKey() string {
	parent := "none"
	if q.ParentID != nil {
		parent = fmt.Sprintf("%d", *q.ParentID)
	}
	cats := make([]string, len(q.CategoryIDs))
	for i, id := range q.CategoryIDs {
		cats[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("choropleth:l%d:p%s:c%s:s%s:d%s:%s",
		q.Level, parent, strings.Join(cats, ","), q.Severity, q.StartDate, q.EndDate)
}

// ChoroplethMeta summarizes the incident counts behind a choropleth view.
type ChoroplethMeta struct {
	TotalCount    int     `json:"totalCount"`
	UnitsWithData int     `json:"unitsWithData"`
	MaxPerUnit    float64 `json:"maxPerUnit"`
}

// ChoroplethResult is a pre-joined FeatureCollection plus its paint
// expression and metadata.
type ChoroplethResult struct {
	FeatureCollection geo.FeatureCollection `json:"featureCollection"`
	PaintExpression   []any                 `json:"paintExpression"`
	Meta              ChoroplethMeta        `json:"meta"`
}

// StatisticsResult is the statistics-by-level endpoint payload.
type StatisticsResult struct {
	Level      int                    `json:"level"`
	ParentID   *int64                 `json:"parentId"`
	Statistics []models.UnitStatistic `json:"statistics"`
}

// LocateResult resolves a coordinate to its containing district.
type LocateResult struct {
	UnitID   int64      `json:"unitId"`
	Name     string     `json:"name"`
	Level    int        `json:"level"`
	Centroid geo.Point  `json:"centroid"`
	Bounds   geo.Bounds `json:"bounds"`
}
