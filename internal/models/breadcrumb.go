package models

// Breadcrumb is one entry in the drill-down navigation trail. RegionID is
// nil only for the root entry.
type Breadcrumb struct {
	Level      int    `json:"level"`
	RegionID   *int64 `json:"regionId"`
	RegionName string `json:"regionName"`
}

// RootBreadcrumb returns the fixed first entry of every breadcrumb stack.
func RootBreadcrumb(rootName string) Breadcrumb {
	return Breadcrumb{Level: RootLevel, RegionID: nil, RegionName: rootName}
}
