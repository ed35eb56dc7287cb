// Package ledger persists campaign and run outcomes to a SQLite
// database in the campaign output directory.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger wraps the SQLite connection holding campaign history.
type Ledger struct {
	conn *sql.DB
}

// Open opens or creates the ledger database and initializes the schema.
func Open(path string) (*Ledger, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	// WAL allows the dashboard or an operator's sqlite3 shell to read
	// while the campaign writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// If the database is locked, retry for up to 5 seconds before failing.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Ledger{conn: conn}, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.conn.Close()
}

// CreateCampaign records a new campaign.
func (l *Ledger) CreateCampaign(c *Campaign) error {
	_, err := l.conn.Exec(`
		INSERT INTO campaigns (id, serial, runs_planned, events, filter, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Serial, c.RunsPlanned, c.Events, c.Filter,
		c.StartedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// RecordRun records the outcome of one run and fills in its row ID.
func (l *Ledger) RecordRun(r *Run) error {
	result, err := l.conn.Exec(`
		INSERT INTO runs (campaign_id, run_index, status, cause, monkey_log, device_log, bugreport, report, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.CampaignID, r.Index, r.Status, r.Cause,
		r.MonkeyLog, r.DeviceLog, r.Bugreport, r.Report,
		r.StartedAt.Format(time.RFC3339), r.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	r.ID = id
	return nil
}

// Campaigns lists recorded campaigns oldest first.
func (l *Ledger) Campaigns() ([]*Campaign, error) {
	rows, err := l.conn.Query(`
		SELECT id, serial, runs_planned, events, filter, started_at
		FROM campaigns ORDER BY started_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		var c Campaign
		var startedAt string

		err := rows.Scan(&c.ID, &c.Serial, &c.RunsPlanned, &c.Events, &c.Filter, &startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}

		c.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		campaigns = append(campaigns, &c)
	}

	return campaigns, rows.Err()
}

// ListRuns lists a campaign's runs in execution order.
func (l *Ledger) ListRuns(campaignID string) ([]*Run, error) {
	rows, err := l.conn.Query(`
		SELECT id, campaign_id, run_index, status, cause, monkey_log, device_log, bugreport, report, started_at, duration_ms
		FROM runs WHERE campaign_id = ? ORDER BY run_index`, campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var startedAt string

		err := rows.Scan(
			&run.ID, &run.CampaignID, &run.Index, &run.Status, &run.Cause,
			&run.MonkeyLog, &run.DeviceLog, &run.Bugreport, &run.Report,
			&startedAt, &run.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// FailedRuns lists a campaign's failed runs in execution order.
func (l *Ledger) FailedRuns(campaignID string) ([]*Run, error) {
	all, err := l.ListRuns(campaignID)
	if err != nil {
		return nil, err
	}
	var failed []*Run
	for _, run := range all {
		if run.Status == StatusFailed {
			failed = append(failed, run)
		}
	}
	return failed, nil
}
