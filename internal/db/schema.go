package db

// Schema contains all CREATE TABLE/INDEX statements for the journal.
// Times are unix milliseconds; booleans are 0/1 integers.
const Schema = `
CREATE TABLE IF NOT EXISTS people (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    name              TEXT    NOT NULL,
    photo_uri         TEXT,
    relationship_type TEXT    NOT NULL,
    created_at        INTEGER NOT NULL,
    archived          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    name           TEXT    NOT NULL,
    emoji          TEXT    NOT NULL,
    default_points INTEGER NOT NULL,
    is_positive    INTEGER NOT NULL,
    is_custom      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS incidents (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    person_id   INTEGER NOT NULL REFERENCES people(id) ON DELETE CASCADE,
    category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    points      INTEGER NOT NULL,
    is_major    INTEGER NOT NULL DEFAULT 0,
    note        TEXT,
    timestamp   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_incidents_person ON incidents(person_id, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_incidents_category ON incidents(category_id);

CREATE TABLE IF NOT EXISTS settings (
    id                    INTEGER PRIMARY KEY CHECK (id = 1),
    major_multiplier      INTEGER NOT NULL DEFAULT 3,
    time_decay_months     INTEGER NOT NULL DEFAULT 6,
    recency_boost_enabled INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS ai_insight_cache (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    person_id      INTEGER NOT NULL REFERENCES people(id) ON DELETE CASCADE,
    insight_type   TEXT    NOT NULL,
    content        TEXT    NOT NULL,
    incident_count INTEGER NOT NULL,
    created_at     INTEGER NOT NULL,
    expires_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ai_cache_person ON ai_insight_cache(person_id, insight_type);
`
