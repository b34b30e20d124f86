package models

import "github.com/electionwatch/atlas-backend/internal/geo"

// BoundaryGeometry is one unit's polygon outline from the static boundary
// bundle. Loaded once per session and read-only afterwards. ParentName is
// the joining key one level up; unit IDs are not present in every
// statistics payload, so joins below district level go through
// (name, level, parentName).
type BoundaryGeometry struct {
	UnitID     int64        `json:"unitId"`
	Name       string       `json:"name"`
	ParentName string       `json:"parentName"`
	Level      int          `json:"level"`
	Geometry   geo.Geometry `json:"geometry"`
}
