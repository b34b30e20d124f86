package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/electionwatch/atlas-backend/internal/dto"
	"github.com/electionwatch/atlas-backend/internal/errs"
	"github.com/electionwatch/atlas-backend/internal/models"
)

// StatStore serves per-unit statistics from Postgres: census metrics for
// the demographics map and filtered incident counts for the incidents map.
type StatStore struct {
	db *sqlx.DB
}

func NewStatStore(db *sqlx.DB) *StatStore {
	return &StatStore{db: db}
}

// UnitByID returns one administrative unit.
func (s *StatStore) UnitByID(ctx context.Context, id int64) (*models.AdministrativeUnit, error) {
	var u models.AdministrativeUnit
	err := s.db.GetContext(ctx, &u,
		`SELECT id, name, level, parent_id FROM admin_units WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFoundError(fmt.Sprintf("administrative unit %d not found", id))
	}
	if err != nil {
		return nil, errs.NewDatabaseError("unit_by_id", err.Error())
	}
	return &u, nil
}

type censusRow struct {
	UnitID           int64   `db:"unit_id"`
	Name             string  `db:"name"`
	ParentName       string  `db:"parent_name"`
	Level            int     `db:"level"`
	Population       float64 `db:"population"`
	Households       float64 `db:"households"`
	RegisteredVoters float64 `db:"registered_voters"`
	VotingAgePercent float64 `db:"voting_age_percent"`
	MalePercent      float64 `db:"male_percent"`
}

// StatisticsByLevel returns census metrics for every unit at level,
// optionally restricted to the children of parentID. Units without a
// census row come back with zero values so the join keeps the map tiled.
func (s *StatStore) StatisticsByLevel(ctx context.Context, level int, parentID *int64) ([]models.UnitStatistic, error) {
	const query = `
		SELECT
			u.id AS unit_id,
			u.name,
			COALESCE(p.name, '') AS parent_name,
			u.level,
			COALESCE(c.population, 0) AS population,
			COALESCE(c.households, 0) AS households,
			COALESCE(c.registered_voters, 0) AS registered_voters,
			COALESCE(c.voting_age_percent, 0) AS voting_age_percent,
			COALESCE(c.male_percent, 0) AS male_percent
		FROM admin_units u
		LEFT JOIN admin_units p ON p.id = u.parent_id
		LEFT JOIN unit_census c ON c.unit_id = u.id
		WHERE u.level = $1
		  AND ($2::bigint IS NULL OR u.parent_id = $2)
		ORDER BY u.name`

	var rows []censusRow
	if err := s.db.SelectContext(ctx, &rows, query, level, parentID); err != nil {
		return nil, errs.NewDatabaseError("statistics_by_level", err.Error())
	}

	out := make([]models.UnitStatistic, len(rows))
	for i, r := range rows {
		out[i] = models.UnitStatistic{
			UnitID:     r.UnitID,
			Name:       r.Name,
			ParentName: r.ParentName,
			Level:      r.Level,
			MetricValues: map[string]float64{
				"population":       r.Population,
				"households":       r.Households,
				"registeredVoters": r.RegisteredVoters,
				"votingAgePercent": r.VotingAgePercent,
				"malePercent":      r.MalePercent,
			},
		}
	}
	return out, nil
}

type incidentRow struct {
	UnitID        int64   `db:"unit_id"`
	Name          string  `db:"name"`
	ParentName    string  `db:"parent_name"`
	Level         int     `db:"level"`
	IncidentCount float64 `db:"incident_count"`
}

// IncidentCounts aggregates incident reports up the unit hierarchy to the
// requested level. Reports attach to parish-level units; the recursive
// lineage walk credits each report to every ancestor, so counts roll up
// correctly at any display level. Filters apply inside the join, keeping
// zero-count units in the result.
func (s *StatStore) IncidentCounts(ctx context.Context, q dto.ChoroplethQuery) ([]models.UnitStatistic, error) {
	conds := []string{"i.unit_id = l.unit_id"}
	args := []any{q.Level, q.ParentID}
	n := 3

	if len(q.CategoryIDs) > 0 {
		conds = append(conds, fmt.Sprintf("i.category_id = ANY($%d)", n))
		args = append(args, pq.Array(q.CategoryIDs))
		n++
	}
	if q.Severity != "" {
		conds = append(conds, fmt.Sprintf("i.severity = $%d", n))
		args = append(args, q.Severity)
		n++
	}
	if q.StartDate != "" {
		conds = append(conds, fmt.Sprintf("i.occurred_at >= $%d::date", n))
		args = append(args, q.StartDate)
		n++
	}
	if q.EndDate != "" {
		conds = append(conds, fmt.Sprintf("i.occurred_at <= $%d::date", n))
		args = append(args, q.EndDate)
		n++
	}

	query := fmt.Sprintf(`
		WITH RECURSIVE lineage AS (
			SELECT id AS unit_id, id AS ancestor_id FROM admin_units
			UNION ALL
			SELECT l.unit_id, u.parent_id
			FROM lineage l
			JOIN admin_units u ON u.id = l.ancestor_id
			WHERE u.parent_id IS NOT NULL
		)
		SELECT
			g.id AS unit_id,
			g.name,
			COALESCE(p.name, '') AS parent_name,
			g.level,
			COUNT(i.id)::float8 AS incident_count
		FROM admin_units g
		LEFT JOIN admin_units p ON p.id = g.parent_id
		LEFT JOIN lineage l ON l.ancestor_id = g.id
		LEFT JOIN incident_reports i ON %s
		WHERE g.level = $1
		  AND ($2::bigint IS NULL OR g.parent_id = $2)
		GROUP BY g.id, g.name, p.name, g.level
		ORDER BY g.name`, strings.Join(conds, " AND "))

	var rows []incidentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errs.NewDatabaseError("incident_counts", err.Error())
	}

	out := make([]models.UnitStatistic, len(rows))
	for i, r := range rows {
		out[i] = models.UnitStatistic{
			UnitID:     r.UnitID,
			Name:       r.Name,
			ParentName: r.ParentName,
			Level:      r.Level,
			MetricValues: map[string]float64{
				"incidentCount": r.IncidentCount,
			},
		}
	}
	return out, nil
}
