package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mlfelice/spruce-tools/aggregate"
)

// Timescale stores pipeline outputs in TimescaleDB. Both output tables are
// created on first use and converted to hypertables.
type Timescale struct {
	conn           *pgx.Conn
	rowsTable      string
	summariesTable string
}

// NewTimescale connects to the database and ensures the output tables
// exist. A table prefix keeps several deployments apart in one database.
func NewTimescale(ctx context.Context, connString, tablePrefix string) (*Timescale, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	ts := &Timescale{
		conn:           conn,
		rowsTable:      tablePrefix + "interval_temps",
		summariesTable: tablePrefix + "interval_temp_summaries",
	}
	if err := ts.init(ctx); err != nil {
		conn.Close(ctx)
		return nil, err
	}
	return ts, nil
}

func (ts *Timescale) init(ctx context.Context) error {
	rowsDDL := fmt.Sprintf(`
		CREATE TABLE %s (
			time        TIMESTAMPTZ NOT NULL,
			plot        INTEGER NOT NULL,
			upper_depth INTEGER NOT NULL,
			lower_depth INTEGER NOT NULL,
			avg_temp    DOUBLE PRECISION
		)`, ts.rowsTable)
	if err := ts.ensureTable(ctx, ts.rowsTable, rowsDDL, "time"); err != nil {
		return err
	}

	summariesDDL := fmt.Sprintf(`
		CREATE TABLE %s (
			date         TIMESTAMPTZ NOT NULL,
			plot         INTEGER NOT NULL,
			upper_depth  INTEGER NOT NULL,
			lower_depth  INTEGER NOT NULL,
			sample_count INTEGER NOT NULL,
			min_temp     DOUBLE PRECISION,
			max_temp     DOUBLE PRECISION,
			mean_temp    DOUBLE PRECISION,
			stdev_temp   DOUBLE PRECISION
		)`, ts.summariesTable)
	return ts.ensureTable(ctx, ts.summariesTable, summariesDDL, "date")
}

func (ts *Timescale) ensureTable(ctx context.Context, name, ddl, timeCol string) error {
	var exists bool
	err := ts.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("store: check table %s: %w", name, err)
	}
	if exists {
		return nil
	}

	if _, err := ts.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("store: create table %s: %w", name, err)
	}
	hyper := fmt.Sprintf("SELECT create_hypertable('%s', '%s')", name, timeCol)
	if _, err := ts.conn.Exec(ctx, hyper); err != nil {
		return fmt.Errorf("store: create hypertable %s: %w", name, err)
	}
	return nil
}

// SaveRows inserts one record per row. An absent interval average is stored
// as NULL.
func (ts *Timescale) SaveRows(ctx context.Context, rows []aggregate.Row) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (time, plot, upper_depth, lower_depth, avg_temp)
		VALUES ($1, $2, $3, $4, $5)`, ts.rowsTable)
	for _, row := range rows {
		_, err := ts.conn.Exec(ctx, stmt,
			row.Timestamp, row.Plot, row.Interval.Top, row.Interval.Bottom, row.Mean)
		if err != nil {
			return fmt.Errorf("store: insert into %s: %w", ts.rowsTable, err)
		}
	}
	return nil
}

// SaveSummaries inserts one record per summary group. A group with no data
// is stored with a count of 0 and NULL statistics, matching the report
// table.
func (ts *Timescale) SaveSummaries(ctx context.Context, summaries []aggregate.Summary) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (date, plot, upper_depth, lower_depth, sample_count,
			min_temp, max_temp, mean_temp, stdev_temp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, ts.summariesTable)
	for _, s := range summaries {
		count := 0
		var min, max, mean, stdev *float64
		if s.Stats != nil {
			count = s.Stats.Count
			min = &s.Stats.Min
			max = &s.Stats.Max
			mean = &s.Stats.Mean
			stdev = &s.Stats.StdDev
		}
		_, err := ts.conn.Exec(ctx, stmt,
			s.Key.Target, s.Key.Plot, s.Key.Interval.Top, s.Key.Interval.Bottom,
			count, min, max, mean, stdev)
		if err != nil {
			return fmt.Errorf("store: insert into %s: %w", ts.summariesTable, err)
		}
	}
	return nil
}

func (ts *Timescale) Close(ctx context.Context) error {
	return ts.conn.Close(ctx)
}
