package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/agentstation/utc"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id       TEXT PRIMARY KEY,
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
    product_id TEXT NOT NULL REFERENCES products(id),
    position   INTEGER NOT NULL,
    path       TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time   TEXT NOT NULL,
    PRIMARY KEY (product_id, position)
);
`

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persistence: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragma := fmt.Sprintf("PRAGMA busy_timeout=%d", constants.SQLiteBusyTimeout.Milliseconds())
	if _, err := db.ExecContext(ctx, pragma); err != nil {
		db.Close()
		return nil, fmt.Errorf("persistence: set busy timeout: %w", err)
	}
	return db, nil
}

func writeSQLite(ctx context.Context, path string, doc *Document) (err error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return errors.WrapResource("create", "catalog database", path, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = errors.WrapIO("close", path, cerr)
		}
	}()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return errors.WrapResource("create", "catalog schema", path, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persistence: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	meta := map[string]string{
		"version":      strconv.Itoa(doc.Version),
		"generated_at": doc.GeneratedAt.Time.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("persistence: write meta %s: %w", k, err)
		}
	}

	productStmt, err := tx.PrepareContext(ctx, "INSERT INTO products (id, position) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("persistence: prepare products: %w", err)
	}
	defer productStmt.Close()

	recordStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO records (product_id, position, path, start_time, end_time) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("persistence: prepare records: %w", err)
	}
	defer recordStmt.Close()

	for i, p := range doc.Products {
		if _, err := productStmt.ExecContext(ctx, p.ID, i); err != nil {
			return fmt.Errorf("persistence: write product %s: %w", p.ID, err)
		}
		for j, f := range p.Files {
			_, err := recordStmt.ExecContext(ctx, p.ID, j, f.Path, formatTime(f.StartTime), formatTime(f.EndTime))
			if err != nil {
				return fmt.Errorf("persistence: write record %s: %w", f.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("persistence: commit: %w", err)
	}
	return nil
}

func readSQLite(ctx context.Context, path string) (*Document, error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, errors.WrapResource("open", "catalog database", path, err)
	}
	defer db.Close()

	doc := &Document{}

	rows, err := db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return nil, errors.WrapParse("sqlite", path, err)
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, errors.WrapParse("sqlite", path, err)
		}
		switch k {
		case "version":
			if doc.Version, err = strconv.Atoi(v); err != nil {
				rows.Close()
				return nil, errors.NewParseError("sqlite", path, "invalid version "+v, err)
			}
		case "generated_at":
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				rows.Close()
				return nil, errors.NewParseError("sqlite", path, "invalid generated_at "+v, err)
			}
			doc.GeneratedAt = utc.New(t)
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, errors.WrapParse("sqlite", path, err)
	}

	rows, err = db.QueryContext(ctx, `
		SELECT p.id, r.path, r.start_time, r.end_time
		FROM products p LEFT JOIN records r ON r.product_id = p.id
		ORDER BY p.position, r.position`)
	if err != nil {
		return nil, errors.WrapParse("sqlite", path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id               string
			file, start, end sql.NullString
		)
		if err := rows.Scan(&id, &file, &start, &end); err != nil {
			return nil, errors.WrapParse("sqlite", path, err)
		}
		if n := len(doc.Products); n == 0 || doc.Products[n-1].ID != id {
			doc.Products = append(doc.Products, Product{ID: id})
		}
		if !file.Valid {
			continue
		}
		f := File{Path: file.String}
		if f.StartTime, err = parseTime(start.String); err != nil {
			return nil, errors.NewParseError("sqlite", path, "invalid start_time for "+f.Path, err)
		}
		if f.EndTime, err = parseTime(end.String); err != nil {
			return nil, errors.NewParseError("sqlite", path, "invalid end_time for "+f.Path, err)
		}
		p := &doc.Products[len(doc.Products)-1]
		p.Files = append(p.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapParse("sqlite", path, err)
	}
	return doc, nil
}

func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
