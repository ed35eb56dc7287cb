package ledger

const schema = `
CREATE TABLE IF NOT EXISTS campaigns (
    id TEXT PRIMARY KEY,
    serial TEXT,
    runs_planned INTEGER NOT NULL,
    events INTEGER NOT NULL,
    filter TEXT,
    started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    campaign_id TEXT NOT NULL,
    run_index INTEGER NOT NULL,
    status TEXT NOT NULL,
    cause TEXT,
    monkey_log TEXT NOT NULL,
    device_log TEXT NOT NULL,
    bugreport TEXT,
    report TEXT,
    started_at TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    FOREIGN KEY (campaign_id) REFERENCES campaigns(id)
);

CREATE INDEX IF NOT EXISTS idx_runs_campaign ON runs(campaign_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`
