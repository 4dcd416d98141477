// Package duckdb loads station sheets through an in-memory DuckDB instance,
// which handles large exports and dialect sniffing better than encoding/csv.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/couchcryptid/perfect-day/internal/adapter/station"
	_ "github.com/marcboeker/go-duckdb"
)

// Open starts an in-memory DuckDB database.
func Open() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to start DuckDB: %w", err)
	}

	return db, nil
}

// Loader reads station sheets with DuckDB's read_csv.
// It implements station.SheetLoader.
type Loader struct {
	db *sql.DB
}

// NewLoader wraps an open DuckDB handle.
func NewLoader(db *sql.DB) *Loader {
	return &Loader{db: db}
}

// LoadSheet reads every line of path as text, header rows included, and
// hands the records to station.NewSheet.
func (l *Loader) LoadSheet(ctx context.Context, path string) (station.Sheet, error) {
	rows, err := l.db.QueryContext(ctx, readCSVQuery(path))
	if err != nil {
		return station.Sheet{}, fmt.Errorf("read %s: %w", path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return station.Sheet{}, fmt.Errorf("read %s: %w", path, err)
	}

	var records [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return station.Sheet{}, fmt.Errorf("scan %s: %w", path, err)
		}

		rec := make([]string, len(cells))
		for i, c := range cells {
			rec[i] = c.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return station.Sheet{}, fmt.Errorf("read %s: %w", path, err)
	}

	sheet, err := station.NewSheet(records)
	if err != nil {
		return station.Sheet{}, fmt.Errorf("read %s: %w", path, err)
	}
	return sheet, nil
}

// readCSVQuery builds the read_csv call. Table functions do not accept bound
// parameters for the path, so it is quoted inline.
func readCSVQuery(path string) string {
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	return fmt.Sprintf(
		"SELECT * FROM read_csv(%s, header = false, all_varchar = true, null_padding = true)",
		quoted,
	)
}
