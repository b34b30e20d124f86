package models

// Administrative levels, broadest to narrowest. Level 1 subregions exist in
// the reference data but the dashboard roots at district level.
const (
	LevelSubregion    = 1
	LevelDistrict     = 2
	LevelConstituency = 3
	LevelSubcounty    = 4
	LevelParish       = 5
)

// RootLevel is the level the drill-down starts at with no parent filter.
const RootLevel = LevelDistrict

// MaxLevel is the deepest drillable level.
const MaxLevel = LevelParish

// AdministrativeUnit is immutable reference data: one row per unit in the
// national hierarchy. Every unit except level-1 roots has exactly one
// parent at level-1 above it.
type AdministrativeUnit struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Level    int    `db:"level" json:"level"`
	ParentID *int64 `db:"parent_id" json:"parentId"`
}

// UnitStatistic is one unit's metric values for a single query. Produced
// per request by the statistics store; never cached across levels.
type UnitStatistic struct {
	UnitID       int64              `db:"unit_id" json:"unitId"`
	Name         string             `db:"name" json:"name"`
	ParentName   string             `db:"parent_name" json:"parentName"`
	Level        int                `db:"level" json:"level"`
	MetricValues map[string]float64 `json:"metricValues"`
}

// LevelName returns the display name for an administrative level.
func LevelName(level int) string {
	switch level {
	case LevelSubregion:
		return "subregion"
	case LevelDistrict:
		return "district"
	case LevelConstituency:
		return "constituency"
	case LevelSubcounty:
		return "subcounty"
	case LevelParish:
		return "parish"
	default:
		return "unknown"
	}
}

// ValidLevel reports whether level is a known administrative level.
func ValidLevel(level int) bool {
	return level >= LevelSubregion && level <= LevelParish
}
