package storage

// MetaSchema is the SQL schema for the central _meta.db database. It only
// tracks banks; the graphs themselves live in line-delimited JSON files.
const MetaSchema = `
CREATE TABLE IF NOT EXISTS banks (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT DEFAULT '',
    graph_path  TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'active'
                CHECK(status IN ('active', 'archived')),
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_banks_status ON banks(status);
CREATE INDEX IF NOT EXISTS idx_banks_name ON banks(name);
`
