package store

const schema = `
CREATE TABLE IF NOT EXISTS keywords (
    id                  TEXT PRIMARY KEY,
    normalized          TEXT NOT NULL UNIQUE,
    position            INTEGER NOT NULL,
    keyword             TEXT NOT NULL,
    search_volume       REAL NOT NULL DEFAULT 0,
    cpc_low             REAL NOT NULL DEFAULT 0,
    cpc_high            REAL NOT NULL DEFAULT 0,
    competition_indexed REAL,
    competition_label   TEXT NOT NULL DEFAULT '',
    yoy_change          REAL,
    three_month_change  REAL,
    monthly_searches    TEXT NOT NULL DEFAULT '[]',
    category            TEXT NOT NULL DEFAULT '',
    alerted_category    TEXT NOT NULL DEFAULT '',
    imported_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_keywords_position ON keywords(position);
CREATE INDEX IF NOT EXISTS idx_keywords_category ON keywords(category);

CREATE TABLE IF NOT EXISTS analysis_runs (
    id            TEXT PRIMARY KEY,
    ran_at        DATETIME NOT NULL,
    keyword_count INTEGER NOT NULL DEFAULT 0,
    has_yoy_data  BOOLEAN NOT NULL DEFAULT 0,
    alerts_sent   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_ran_at ON analysis_runs(ran_at);
`
