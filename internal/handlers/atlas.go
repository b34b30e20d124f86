package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/electionwatch/atlas-backend/internal/dto"
	"github.com/electionwatch/atlas-backend/internal/errs"
	"github.com/electionwatch/atlas-backend/internal/geo"
	"github.com/electionwatch/atlas-backend/internal/response"
	"github.com/electionwatch/atlas-backend/internal/services"
)

type AtlasService interface {
	StatisticsByLevel(ctx context.Context, level int, parentID *int64) (dto.StatisticsResult, error)
	Choropleth(ctx context.Context, q dto.ChoroplethQuery) (dto.ChoroplethResult, error)
	BoundariesForLevel(ctx context.Context, level int) (geo.FeatureCollection, error)
	Locate(ctx context.Context, pt geo.Point) (dto.LocateResult, error)
	MetricTypes(ctx context.Context) []services.MetricSpec
}

type atlasHandlers struct {
	ResponseHandler response.ResponseHandler
	AtlasSvc        AtlasService
}

func NewAtlasHandlers(deps *Deps) *atlasHandlers {
	return &atlasHandlers{
		ResponseHandler: deps.ResponseHandler,
		AtlasSvc:        deps.AtlasSvc,
	}
}

func (h *atlasHandlers) AtlasRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/statistics", h.GetStatistics)
	r.Get("/choropleth", h.GetChoropleth)
	r.Get("/boundaries/{level}", h.GetBoundaries)
	r.Get("/locate", h.Locate)
	r.Get("/metric-types", h.GetMetricTypes)
	return r
}

func (h *atlasHandlers) GetStatistics(w http.ResponseWriter, r *http.Request) {
	level, err := queryInt(r, "level")
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	parentID, err := queryInt64Opt(r, "parentId")
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	result, err := h.AtlasSvc.StatisticsByLevel(r.Context(), level, parentID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}

func (h *atlasHandlers) GetChoropleth(w http.ResponseWriter, r *http.Request) {
	level, err := queryInt(r, "level")
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	parentID, err := queryInt64Opt(r, "parentId")
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	categoryIDs, err := queryInt64List(r, "categoryIds")
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	q := dto.ChoroplethQuery{
		Level:       level,
		ParentID:    parentID,
		CategoryIDs: categoryIDs,
		Severity:    r.URL.Query().Get("severity"),
		StartDate:   r.URL.Query().Get("startDate"),
		EndDate:     r.URL.Query().Get("endDate"),
	}
	result, err := h.AtlasSvc.Choropleth(r.Context(), q)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}

func (h *atlasHandlers) GetBoundaries(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("level must be an integer"))
		return
	}
	fc, err := h.AtlasSvc.BoundariesForLevel(r.Context(), level)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, fc)
}

func (h *atlasHandlers) Locate(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	lng, err := queryFloat(r, "lng")
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	result, err := h.AtlasSvc.Locate(r.Context(), geo.Point{Lng: lng, Lat: lat})
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}

// GetMetricTypes returns the catalog of displayable metrics and their scale policies.
func (h *atlasHandlers) GetMetricTypes(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.AtlasSvc.MetricTypes(r.Context()))
}

// --- Query parsing ---

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, errs.NewValidationError(key + " is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewValidationError(key + " must be an integer")
	}
	return v, nil
}

func queryInt64Opt(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errs.NewValidationError(key + " must be an integer")
	}
	return &v, nil
}

func queryInt64List(r *http.Request, key string) ([]int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errs.NewValidationError(key + " must be a comma-separated list of integers")
		}
		out = append(out, v)
	}
	return out, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, errs.NewValidationError(key + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errs.NewValidationError(key + " must be a number")
	}
	return v, nil
}
