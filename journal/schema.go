package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	issuer TEXT NOT NULL,
	valuation_date TEXT NOT NULL,
	priced_at TEXT NOT NULL,
	specification BLOB NOT NULL,
	pv_protection_leg REAL NOT NULL,
	pv_premium_leg REAL NOT NULL,
	price REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_issuer ON runs(issuer);
`
