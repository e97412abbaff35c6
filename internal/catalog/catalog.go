// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite snapshot of the reference tables so
// queries can run without re-reading (or re-downloading) the sources.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/smartcity-advisor/internal/dataset"
	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

const dbFile = "catalog.db"

// ErrNoSnapshot is returned by Load when nothing has been imported yet.
var ErrNoSnapshot = errors.New("catalog is empty; run catalog import first")

// Catalog manages the snapshot database.
type Catalog struct {
	db  *sql.DB
	dir string
	log *slog.Logger
}

// Open opens or creates dir/catalog.db and its schema.
func Open(dir string, log *slog.Logger) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := &Catalog{db: db, dir: dir, log: log}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Dir returns the catalog directory.
func (c *Catalog) Dir() string { return c.dir }

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cities (
			ord INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			climate TEXT,
			fields TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			city TEXT NOT NULL,
			slot INTEGER NOT NULL,
			name TEXT,
			scope TEXT,
			duration TEXT,
			description TEXT,
			status TEXT,
			cost REAL,
			missing TEXT,
			PRIMARY KEY (city, slot)
		)`,
		`CREATE TABLE IF NOT EXISTS funding (
			ord INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			region TEXT NOT NULL,
			category_label TEXT NOT NULL,
			total_eligible_expenditure REAL NOT NULL,
			eu_budget REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_funding_region ON funding(region)`,
		`CREATE TABLE IF NOT EXISTS categories (
			ord INTEGER PRIMARY KEY,
			smart_category TEXT NOT NULL,
			category_label TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			imported_at TEXT NOT NULL,
			cities INTEGER NOT NULL,
			project_cities INTEGER NOT NULL,
			funding INTEGER NOT NULL,
			categories INTEGER NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds the row counts of one import.
type ImportSummary struct {
	Cities        int       `json:"cities" yaml:"cities"`
	ProjectCities int       `json:"project_cities" yaml:"project_cities"`
	Funding       int       `json:"funding" yaml:"funding"`
	Categories    int       `json:"categories" yaml:"categories"`
	ImportedAt    time.Time `json:"imported_at" yaml:"imported_at"`
}

// Import replaces the snapshot with t in a single transaction.
func (c *Catalog) Import(ctx context.Context, t *dataset.Tables) (ImportSummary, error) {
	summary := ImportSummary{
		Cities:        len(t.Cities),
		ProjectCities: len(t.Projects),
		Funding:       len(t.Funding),
		Categories:    len(t.Categories),
		ImportedAt:    time.Now().UTC(),
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"cities", "projects", "funding", "categories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return summary, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, city := range t.Cities {
		fields, err := json.Marshal(city.Fields)
		if err != nil {
			return summary, fmt.Errorf("encoding city %s: %w", city.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cities (ord, name, climate, fields) VALUES (?, ?, ?, ?)`,
			i, city.Name, city.Climate, string(fields),
		); err != nil {
			return summary, fmt.Errorf("inserting city %s: %w", city.Name, err)
		}
	}

	for city, cp := range t.Projects {
		for _, p := range cp.Projects {
			missing, _ := json.Marshal(p.Missing)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO projects (city, slot, name, scope, duration, description, status, cost, missing)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				city, p.Slot, p.Name, p.Scope, p.Duration, p.Description, p.Status, p.Cost, string(missing),
			); err != nil {
				return summary, fmt.Errorf("inserting project %s/%d: %w", city, p.Slot, err)
			}
		}
	}

	for i, r := range t.Funding {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO funding (ord, id, region, category_label, total_eligible_expenditure, eu_budget)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i, r.ID, r.Region, r.CategoryLabel, r.TotalEligibleExpenditure, r.EUBudget,
		); err != nil {
			return summary, fmt.Errorf("inserting funding row %s: %w", r.ID, err)
		}
	}

	for i, m := range t.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (ord, smart_category, category_label) VALUES (?, ?, ?)`,
			i, m.SmartCategory, m.CategoryLabel,
		); err != nil {
			return summary, fmt.Errorf("inserting category %s: %w", m.CategoryLabel, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (imported_at, cities, project_cities, funding, categories) VALUES (?, ?, ?, ?, ?)`,
		summary.ImportedAt.Format(time.RFC3339Nano), summary.Cities, summary.ProjectCities, summary.Funding, summary.Categories,
	); err != nil {
		return summary, fmt.Errorf("recording import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}

	c.log.Info("catalog imported",
		slog.String("dir", c.dir),
		slog.Int("cities", summary.Cities),
		slog.Int("project_cities", summary.ProjectCities),
		slog.Int("funding", summary.Funding),
		slog.Int("categories", summary.Categories))
	return summary, nil
}

// Stats returns the summary of the latest import, or ErrNoSnapshot.
func (c *Catalog) Stats(ctx context.Context) (ImportSummary, error) {
	var s ImportSummary
	var at string
	err := c.db.QueryRowContext(ctx,
		`SELECT imported_at, cities, project_cities, funding, categories
		 FROM imports ORDER BY id DESC LIMIT 1`,
	).Scan(&at, &s.Cities, &s.ProjectCities, &s.Funding, &s.Categories)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNoSnapshot
	}
	if err != nil {
		return s, fmt.Errorf("querying imports: %w", err)
	}
	if s.ImportedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return s, fmt.Errorf("parsing import time: %w", err)
	}
	return s, nil
}

// Load reads the snapshot back into tables, preserving source order.
func (c *Catalog) Load(ctx context.Context) (*dataset.Tables, error) {
	if _, err := c.Stats(ctx); err != nil {
		return nil, err
	}

	t := &dataset.Tables{Projects: types.ProjectTable{}}

	rows, err := c.db.QueryContext(ctx, `SELECT name, climate, fields FROM cities ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("querying cities: %w", err)
	}
	for rows.Next() {
		var city types.RawCity
		var climate sql.NullString
		var fields string
		if err := rows.Scan(&city.Name, &climate, &fields); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning city: %w", err)
		}
		city.Climate = climate.String
		if err := json.Unmarshal([]byte(fields), &city.Fields); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding city %s: %w", city.Name, err)
		}
		t.Cities = append(t.Cities, city)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = c.db.QueryContext(ctx,
		`SELECT city, slot, name, scope, duration, description, status, cost, missing
		 FROM projects ORDER BY city, slot`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	for rows.Next() {
		var city, missing string
		var p types.ProjectRecord
		if err := rows.Scan(&city, &p.Slot, &p.Name, &p.Scope, &p.Duration, &p.Description, &p.Status, &p.Cost, &missing); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		if err := json.Unmarshal([]byte(missing), &p.Missing); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding project %s/%d: %w", city, p.Slot, err)
		}
		cp := t.Projects[city]
		cp.City = city
		cp.Projects = append(cp.Projects, p)
		t.Projects[city] = cp
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = c.db.QueryContext(ctx,
		`SELECT id, region, category_label, total_eligible_expenditure, eu_budget FROM funding ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("querying funding: %w", err)
	}
	for rows.Next() {
		var r types.FundingRecord
		if err := rows.Scan(&r.ID, &r.Region, &r.CategoryLabel, &r.TotalEligibleExpenditure, &r.EUBudget); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning funding row: %w", err)
		}
		t.Funding = append(t.Funding, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = c.db.QueryContext(ctx, `SELECT smart_category, category_label FROM categories ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m types.CategoryMapping
		if err := rows.Scan(&m.SmartCategory, &m.CategoryLabel); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		t.Categories = append(t.Categories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	c.log.Debug("catalog loaded", slog.Int("cities", len(t.Cities)), slog.Int("funding", len(t.Funding)))
	return t, nil
}
