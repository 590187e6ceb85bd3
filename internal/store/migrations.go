package store

const createTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id              TEXT PRIMARY KEY,
    technician      TEXT NOT NULL,
    workbench       TEXT NOT NULL,
    hostname        TEXT NOT NULL DEFAULT '',
    collected_at    TEXT NOT NULL,
    created_at      TEXT NOT NULL,
    snapshot_json   TEXT NOT NULL DEFAULT '',
    results_json    TEXT NOT NULL DEFAULT '',
    report_path     TEXT NOT NULL DEFAULT '',
    total_tests     INTEGER NOT NULL DEFAULT 0,
    passed_tests    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_technician ON sessions(technician);
CREATE INDEX IF NOT EXISTS idx_sessions_workbench ON sessions(workbench);
CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);
`
