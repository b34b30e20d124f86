package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/electionwatch/atlas-backend/internal/errs"
	"github.com/electionwatch/atlas-backend/internal/geo"
	"github.com/electionwatch/atlas-backend/internal/models"
	"github.com/electionwatch/atlas-backend/pkg/logger"
)

// Renderer is the handle to the rendering layer. It is always injected,
// never a package-level singleton, so multiple independent map instances
// and test doubles both work.
type Renderer interface {
	AddSource(id string, fc geo.FeatureCollection) error
	AddLayer(layerID, sourceID string, paintExpression []any) error
	RemoveLayer(id string) error
	RemoveSource(id string) error
	SetPaintProperty(layerID, property string, value any) error
	FitBounds(b geo.Bounds) error
}

// statisticsProvider fetches per-unit statistics for one level. Results
// are ephemeral and re-fetched on every level or filter change.
type statisticsProvider interface {
	StatisticsByLevel(ctx context.Context, level int, parentID *int64) ([]models.UnitStatistic, error)
}

type drillJoiner interface {
	Join(ctx context.Context, level int, parent *ParentFilter, stats []models.UnitStatistic, metric MetricSpec) (JoinResult, error)
}

type districtLocator interface {
	LocateDistrict(pt geo.Point) (models.BoundaryGeometry, bool)
}

// Interaction modes. In stats mode clicks never mutate the breadcrumb
// stack; they only open a read-only detail panel.
type InteractionMode string

const (
	ModeDrillDown InteractionMode = "drilldown"
	ModeStats     InteractionMode = "stats"
)

// ClickAction tells the UI adapter what a click resolved to.
type ClickAction string

const (
	ActionNone        ClickAction = "none"
	ActionDrilled     ClickAction = "drilled"
	ActionDetailPanel ClickAction = "detail"
)

// ClickedFeature is the rendered feature under the cursor, as reported by
// the rendering layer's feature query. Value is the active metric's value
// on that feature.
type ClickedFeature struct {
	UnitID   int64
	UnitName string
	Value    float64
}

const (
	unitSourceID = "atlas-units"
	unitLayerID  = "atlas-units-fill"
)

const defaultMetric = "population"

// DrillDownEngine owns the breadcrumb stack and drives the rendering
// layer through level transitions. All methods must be called from a
// single goroutine (the UI event loop); the boundary cache behind the
// locator is the only state shared elsewhere.
type DrillDownEngine struct {
	renderer Renderer
	provider statisticsProvider
	joiner   drillJoiner
	locator  districtLocator

	rootName string
	mode     InteractionMode
	metric   string

	stack        []models.Breadcrumb
	currentToken uuid.UUID
	mounted      bool
	lastResult   *JoinResult
	noData       bool
}

func NewDrillDownEngine(renderer Renderer, provider statisticsProvider, joiner drillJoiner, locator districtLocator, rootName string) *DrillDownEngine {
	return &DrillDownEngine{
		renderer: renderer,
		provider: provider,
		joiner:   joiner,
		locator:  locator,
		rootName: rootName,
		mode:     ModeDrillDown,
		metric:   defaultMetric,
		stack:    []models.Breadcrumb{models.RootBreadcrumb(rootName)},
	}
}

// Breadcrumbs returns a copy of the navigation trail.
func (e *DrillDownEngine) Breadcrumbs() []models.Breadcrumb {
	out := make([]models.Breadcrumb, len(e.stack))
	copy(out, e.stack)
	return out
}

// CurrentLevel is the level being displayed: the root level while only
// the root entry remains, otherwise one below the top of the stack.
func (e *DrillDownEngine) CurrentLevel() int {
	if len(e.stack) == 1 {
		return models.RootLevel
	}
	return e.stack[len(e.stack)-1].Level + 1
}

// ParentID is the region the current view is filtered to, nil at root.
func (e *DrillDownEngine) ParentID() *int64 {
	return e.stack[len(e.stack)-1].RegionID
}

func (e *DrillDownEngine) parentFilter() *ParentFilter {
	top := e.stack[len(e.stack)-1]
	if top.RegionID == nil {
		return nil
	}
	return &ParentFilter{Level: top.Level, Name: top.RegionName}
}

func (e *DrillDownEngine) SetMode(mode InteractionMode) { e.mode = mode }
func (e *DrillDownEngine) Mode() InteractionMode        { return e.mode }
func (e *DrillDownEngine) Metric() string               { return e.metric }

// NoData reports whether the last recompute produced an empty view.
func (e *DrillDownEngine) NoData() bool { return e.noData }

// Recompute fetches statistics for the current level and parent, joins
// them to boundaries, and commits the result to the rendering layer.
// Every call supersedes the previous one: a result arriving for an
// already-superseded request is discarded silently.
func (e *DrillDownEngine) Recompute(ctx context.Context) error {
	token := uuid.New()
	e.currentToken = token

	spec, ok := MetricSpecFor(e.metric)
	if !ok {
		return errs.NewValidationError("unknown metric: " + e.metric)
	}
	level := e.CurrentLevel()
	parentID := e.ParentID()

	stats, err := e.provider.StatisticsByLevel(ctx, level, parentID)
	if err != nil {
		// Map stays on its last valid state; the caller clears its
		// loading indicator.
		logger.FromContext(ctx).Error("statistics fetch failed", "level", level, "error", err)
		return err
	}
	if e.currentToken != token {
		logger.FromContext(ctx).Debug("discarding stale statistics response", "level", level)
		return nil
	}

	result, err := e.joiner.Join(ctx, level, e.parentFilter(), stats, spec)
	if err != nil {
		return err
	}
	if e.currentToken != token {
		logger.FromContext(ctx).Debug("discarding stale join result", "level", level)
		return nil
	}

	return e.commit(ctx, result)
}

// commit sequences the layer mutation: prior view removed before the new
// one is added, and nothing is added for an empty result.
func (e *DrillDownEngine) commit(ctx context.Context, result JoinResult) error {
	if e.mounted {
		if err := e.renderer.RemoveLayer(unitLayerID); err != nil {
			return err
		}
		if err := e.renderer.RemoveSource(unitSourceID); err != nil {
			return err
		}
		e.mounted = false
	}

	if result.Empty() {
		e.noData = true
		e.lastResult = nil
		logger.FromContext(ctx).Info("no data for view", "level", e.CurrentLevel())
		return nil
	}

	if err := e.renderer.AddSource(unitSourceID, result.Collection); err != nil {
		return err
	}
	if err := e.renderer.AddLayer(unitLayerID, unitSourceID, result.PaintExpression); err != nil {
		return err
	}
	if err := e.renderer.FitBounds(result.Bounds); err != nil {
		return err
	}
	e.mounted = true
	e.noData = false
	e.lastResult = &result
	return nil
}

// HandleClick resolves a map click. clicked is the rendered feature under
// the cursor, nil when the rendering layer found none there; pt is the
// raw click coordinate for the geometric fallback.
func (e *DrillDownEngine) HandleClick(ctx context.Context, clicked *ClickedFeature, pt geo.Point) (ClickAction, error) {
	if e.mode == ModeStats {
		if clicked != nil {
			return ActionDetailPanel, nil
		}
		return ActionNone, nil
	}

	if clicked == nil {
		return e.directNavigate(ctx, pt)
	}

	if e.CurrentLevel() >= models.MaxLevel {
		// Parish is the deepest level. A unit with data opens the detail
		// panel; a unit with nothing recorded does nothing.
		if clicked.Value > 0 {
			return ActionDetailPanel, nil
		}
		return ActionNone, nil
	}

	prev := e.stack
	e.stack = append(e.Breadcrumbs(), models.Breadcrumb{
		Level:      e.CurrentLevel(),
		RegionID:   &clicked.UnitID,
		RegionName: clicked.UnitName,
	})
	if err := e.Recompute(ctx); err != nil {
		e.stack = prev
		return ActionNone, err
	}
	return ActionDrilled, nil
}

// directNavigate handles clicks on the base map, where no vector feature
// is queryable: a pure geometric hit test against the cached district
// boundaries, then a fresh two-entry stack rooted at the hit district.
func (e *DrillDownEngine) directNavigate(ctx context.Context, pt geo.Point) (ClickAction, error) {
	if len(e.stack) != 1 {
		return ActionNone, nil
	}
	district, ok := e.locator.LocateDistrict(pt)
	if !ok {
		return ActionNone, nil
	}

	prev := e.stack
	id := district.UnitID
	e.stack = []models.Breadcrumb{
		models.RootBreadcrumb(e.rootName),
		{Level: models.LevelDistrict, RegionID: &id, RegionName: district.Name},
	}
	if err := e.Recompute(ctx); err != nil {
		e.stack = prev
		return ActionNone, err
	}
	return ActionDrilled, nil
}

// DrillOut truncates the breadcrumb stack to index (inclusive) and
// recomputes at the resulting level. Negative indexes mean "root".
func (e *DrillDownEngine) DrillOut(ctx context.Context, index int) error {
	if index < 0 {
		index = 0
	}
	if index >= len(e.stack) {
		return errs.NewValidationError("breadcrumb index out of range")
	}

	prev := e.stack
	e.stack = e.stack[:index+1]
	if err := e.Recompute(ctx); err != nil {
		e.stack = prev
		return err
	}
	return nil
}

// SetMetric switches the active metric. When a view is already mounted
// the existing features are recolored in place: no re-fetch, no re-join,
// just a new scale and paint expression.
func (e *DrillDownEngine) SetMetric(ctx context.Context, name string) error {
	spec, ok := MetricSpecFor(name)
	if !ok {
		return errs.NewValidationError("unknown metric: " + name)
	}
	e.metric = name

	if e.lastResult == nil {
		return e.Recompute(ctx)
	}

	scale := ScaleFor(spec, e.lastResult.Collection.Features)
	for i := range e.lastResult.Collection.Features {
		f := &e.lastResult.Collection.Features[i]
		v, _ := numericProperty(*f, spec.PropertyKey)
		f.Properties["fillColor"] = scale.ColorFor(v)
	}
	e.lastResult.Scale = scale
	e.lastResult.PaintExpression = scale.PaintExpression(spec.PropertyKey)
	return e.renderer.SetPaintProperty(unitLayerID, "fill-color", e.lastResult.PaintExpression)
}
