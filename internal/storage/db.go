package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"sunquote/internal"
	"sunquote/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY,
  syncUid TEXT,
  category TEXT NOT NULL,
  brand TEXT NOT NULL,
  model TEXT NOT NULL,
  watts REAL,
  usableKWh REAL,
  ratedKw REAL,
  datasheet TEXT,
  updatedAt TEXT,
  raw_json TEXT NOT NULL,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_brand_model ON products(category, brand, model);
CREATE INDEX IF NOT EXISTS idx_products_syncUid ON products(syncUid);

CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS extractions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  emailId INTEGER NOT NULL,
  category TEXT NOT NULL,
  brand TEXT,
  model TEXT,
  count INTEGER,
  watts REAL,
  arrayKwDc REAL,
  usableKWh REAL,
  ratedKw REAL,
  phases TEXT,
  score INTEGER NOT NULL,
  confidence TEXT NOT NULL,
  synthetic INTEGER NOT NULL DEFAULT 0,
  warningsJson TEXT NOT NULL,
  candidatesJson TEXT NOT NULL,
  address TEXT,
  postcode TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(emailId, category),
  FOREIGN KEY(emailId) REFERENCES emails(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  emailId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(emailId) REFERENCES emails(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertProducts(products []internal.CatalogProduct) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO products (
  id, syncUid, category, brand, model,
  watts, usableKWh, ratedKw, datasheet, updatedAt, raw_json, lastSeenAt
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  syncUid=excluded.syncUid,
  category=excluded.category,
  brand=excluded.brand,
  model=excluded.model,
  watts=excluded.watts,
  usableKWh=excluded.usableKWh,
  ratedKw=excluded.ratedKw,
  datasheet=excluded.datasheet,
  updatedAt=excluded.updatedAt,
  raw_json=excluded.raw_json,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.Exec(
			p.ID, p.SyncUID, string(p.Category), p.Brand, p.Model,
			p.Watts, p.UsableKWh, p.RatedKw, p.Datasheet, p.UpdatedAt, p.RawJSON,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListProducts() ([]internal.CatalogProduct, error) {
	rows, err := d.conn.Query(`
SELECT id, syncUid, category, brand, model, watts, usableKWh, ratedKw, datasheet, updatedAt, raw_json
FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CatalogProduct
	for rows.Next() {
		var p internal.CatalogProduct
		var category string
		if err := rows.Scan(
			&p.ID, &p.SyncUID, &category, &p.Brand, &p.Model,
			&p.Watts, &p.UsableKWh, &p.RatedKw, &p.Datasheet, &p.UpdatedAt, &p.RawJSON,
		); err != nil {
			return nil, err
		}
		p.Category = internal.ProductCategory(category)
		out = append(out, p)
	}

	return out, rows.Err()
}

func (d *DB) UpsertEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, errors.New("failed to upsert email")
	}
	return *row, nil
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetEmailByID(id int) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE id = ?
`, id).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListEmailsByStatus(status string, limit int) ([]internal.EmailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmailRow
	for rows.Next() {
		var row internal.EmailRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEmailStatus(emailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, emailID)
	return err
}

func (d *DB) ClearEmailProcessing(emailID int) error {
	_, err := d.conn.Exec(`DELETE FROM extractions WHERE emailId = ?`, emailID)
	return err
}

func (d *DB) InsertExtraction(emailID int, rec internal.ExtractionRecord) (int64, error) {
	warningsJSON, _ := json.Marshal(rec.Warnings)
	candidatesJSON, _ := json.Marshal(rec.Candidates)

	result, err := d.conn.Exec(`
INSERT INTO extractions (
  emailId, category, brand, model, count, watts, arrayKwDc, usableKWh, ratedKw,
  phases, score, confidence, synthetic, warningsJson, candidatesJson, address, postcode
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(emailId, category) DO UPDATE SET
  brand=excluded.brand,
  model=excluded.model,
  count=excluded.count,
  watts=excluded.watts,
  arrayKwDc=excluded.arrayKwDc,
  usableKWh=excluded.usableKWh,
  ratedKw=excluded.ratedKw,
  phases=excluded.phases,
  score=excluded.score,
  confidence=excluded.confidence,
  synthetic=excluded.synthetic,
  warningsJson=excluded.warningsJson,
  candidatesJson=excluded.candidatesJson,
  address=excluded.address,
  postcode=excluded.postcode
`, emailID, string(rec.Category), rec.Brand, rec.Model, rec.Count, rec.Watts, rec.ArrayKwDc,
		rec.UsableKWh, rec.RatedKw, rec.Phases, rec.Score, string(rec.Confidence), rec.Synthetic,
		string(warningsJSON), string(candidatesJSON), rec.Address, rec.Postcode)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertRun(traceID string, emailID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, emailId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, emailID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) GetExportRows(emailID int) ([]internal.ReviewExportRow, error) {
	rows, err := d.conn.Query(`
SELECT
  emailId, category, brand, model, count, watts, arrayKwDc, usableKWh, ratedKw,
  phases, score, confidence, synthetic, warningsJson, candidatesJson, address, postcode
FROM extractions
WHERE emailId = ?
ORDER BY
  CASE category WHEN 'panel' THEN 1 WHEN 'battery' THEN 2 ELSE 3 END
`, emailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReviewExportRow
	for rows.Next() {
		var row internal.ReviewExportRow
		var warningsJSON, candidatesJSON string
		if err := rows.Scan(
			&row.EmailID,
			&row.Category,
			&row.Brand,
			&row.Model,
			&row.Count,
			&row.Watts,
			&row.ArrayKwDc,
			&row.UsableKWh,
			&row.RatedKw,
			&row.Phases,
			&row.Score,
			&row.Confidence,
			&row.Synthetic,
			&warningsJSON,
			&candidatesJSON,
			&row.Address,
			&row.Postcode,
		); err != nil {
			return nil, err
		}

		var warnings []string
		_ = json.Unmarshal([]byte(warningsJSON), &warnings)
		row.Warnings = strings.Join(warnings, "; ")

		var candidates []struct {
			Model *string `json:"model"`
			Score int     `json:"score"`
		}
		_ = json.Unmarshal([]byte(candidatesJSON), &candidates)
		if len(candidates) > 1 {
			if candidates[1].Model != nil {
				row.RunnerUpModel = candidates[1].Model
			}
			row.RunnerUpScore = util.IntPtr(candidates[1].Score)
		}

		out = append(out, row)
	}

	return out, rows.Err()
}

func (d *DB) MustEmailByProviderMessageID(provider, messageID string) (internal.EmailRow, error) {
	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, fmt.Errorf("email not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}
