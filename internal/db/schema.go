package db

// Schema is applied on every start. Every statement is idempotent.
const Schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS foia_requests (
	id INTEGER PRIMARY KEY,
	reference_number TEXT,
	agency TEXT,
	project_id INTEGER REFERENCES projects(id) ON DELETE SET NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS project_documents (
	id INTEGER PRIMARY KEY,
	project_slug TEXT,
	title TEXT,
	filename TEXT NOT NULL,
	stored_path TEXT NOT NULL,
	mime_type TEXT,
	size INTEGER NOT NULL DEFAULT 0,
	notes TEXT,
	uploaded_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS foia_attachments (
	id INTEGER PRIMARY KEY,
	foia_request_id INTEGER REFERENCES foia_requests(id) ON DELETE CASCADE,
	filename TEXT NOT NULL,
	mime_type TEXT,
	size INTEGER NOT NULL DEFAULT 0,
	stored_path TEXT NOT NULL,
	ocr_pdf_path TEXT,
	is_encrypted INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS media_items (
	id INTEGER PRIMARY KEY,
	title TEXT,
	filename TEXT,
	stored_path TEXT,
	mime_type TEXT,
	transcript_text TEXT,
	project_id INTEGER REFERENCES projects(id) ON DELETE SET NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE VIRTUAL TABLE IF NOT EXISTS doc_fts USING fts5(
	doc_id UNINDEXED,
	source UNINDEXED,
	title,
	body,
	tokenize = 'porter'
);

CREATE TABLE IF NOT EXISTS index_state (
	doc_id INTEGER NOT NULL,
	source TEXT NOT NULL,
	content_hash TEXT NOT NULL DEFAULT '',
	body_chars INTEGER NOT NULL DEFAULT 0,
	indexed_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	fts_rowid INTEGER,
	partial INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (doc_id, source)
);

CREATE TABLE IF NOT EXISTS entities (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entity_mentions (
	id INTEGER PRIMARY KEY,
	entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
	doc_id INTEGER NOT NULL,
	source TEXT NOT NULL DEFAULT 'project',
	occurrences INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (entity_id, doc_id, source)
);

CREATE TABLE IF NOT EXISTS index_runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	processed INTEGER NOT NULL DEFAULT 0,
	non_empty INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_entities_name_kind ON entities(lower(name), kind);
CREATE INDEX IF NOT EXISTS idx_mentions_doc ON entity_mentions(doc_id, source);
CREATE INDEX IF NOT EXISTS idx_documents_slug ON project_documents(project_slug);
CREATE INDEX IF NOT EXISTS idx_attachments_request ON foia_attachments(foia_request_id);
CREATE INDEX IF NOT EXISTS idx_runs_started ON index_runs(started_at);
`

// schemaVersion is stored in PRAGMA user_version once migrate has run.
const schemaVersion = 1

// index_state predates fts_rowid and partial in older databases. Version 1
// adds them and links every doc_fts row to a state row, keeping the newest
// row when a document was indexed more than once.
const migrateV1 = `
CREATE TEMP TABLE fts_keys (
	doc_id INTEGER NOT NULL,
	source TEXT NOT NULL,
	rid INTEGER NOT NULL,
	PRIMARY KEY (doc_id, source)
);
INSERT INTO fts_keys (doc_id, source, rid)
	SELECT doc_id, source, MAX(rowid) FROM doc_fts GROUP BY doc_id, source;
UPDATE index_state SET fts_rowid = (
	SELECT k.rid FROM fts_keys k WHERE k.doc_id = index_state.doc_id AND k.source = index_state.source)
	WHERE fts_rowid IS NULL;
INSERT OR IGNORE INTO index_state (doc_id, source, content_hash, body_chars, fts_rowid)
	SELECT doc_id, source, '', 0, rid FROM fts_keys;
DELETE FROM doc_fts WHERE rowid NOT IN (
	SELECT fts_rowid FROM index_state WHERE fts_rowid IS NOT NULL);
DROP TABLE fts_keys;
`
