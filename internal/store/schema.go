package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateSchema creates all tables needed by the statistics store.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Administrative hierarchy (reference data, loaded once)
CREATE TABLE IF NOT EXISTS admin_units (
    id BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    level INT NOT NULL CHECK (level BETWEEN 1 AND 5),
    parent_id BIGINT REFERENCES admin_units(id)
);

CREATE INDEX IF NOT EXISTS idx_admin_units_level ON admin_units(level);
CREATE INDEX IF NOT EXISTS idx_admin_units_parent ON admin_units(parent_id);

-- Census metrics per unit
CREATE TABLE IF NOT EXISTS unit_census (
    unit_id BIGINT PRIMARY KEY REFERENCES admin_units(id),
    population DOUBLE PRECISION NOT NULL DEFAULT 0,
    households DOUBLE PRECISION NOT NULL DEFAULT 0,
    registered_voters DOUBLE PRECISION NOT NULL DEFAULT 0,
    voting_age_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
    male_percent DOUBLE PRECISION NOT NULL DEFAULT 0
);

-- Incident taxonomy
CREATE TABLE IF NOT EXISTS incident_categories (
    id BIGINT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

-- Reported incidents, attached to parish-level units
CREATE TABLE IF NOT EXISTS incident_reports (
    id UUID PRIMARY KEY,
    unit_id BIGINT NOT NULL REFERENCES admin_units(id),
    category_id BIGINT REFERENCES incident_categories(id),
    severity TEXT NOT NULL DEFAULT 'medium' CHECK (severity IN ('low', 'medium', 'high')),
    description TEXT,
    occurred_at DATE NOT NULL,
    reported_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_incident_reports_unit ON incident_reports(unit_id);
CREATE INDEX IF NOT EXISTS idx_incident_reports_occurred ON incident_reports(occurred_at);
CREATE INDEX IF NOT EXISTS idx_incident_reports_category ON incident_reports(category_id);
`
