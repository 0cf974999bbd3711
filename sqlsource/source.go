// Package sqlsource provides a tablegrid row source backed by a SQL query.
// The pure-Go SQLite driver is registered as "sqlite".
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/javajack/tablegrid"
	_ "modernc.org/sqlite"
)

// Source runs a query and returns its result rows keyed by column name.
type Source struct {
	db    *sql.DB
	owned bool
	query string
	args  []any
}

// New wraps an open database. The caller keeps ownership of db.
func New(db *sql.DB, query string, args ...any) *Source {
	return &Source{db: db, query: query, args: args}
}

// Open opens a SQLite database at dsn (":memory:" for a private in-memory
// database) and returns a source over query. Close releases the database.
func Open(dsn, query string, args ...any) (*Source, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	// every pooled connection to ":memory:" would be a separate database
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return &Source{db: db, owned: true, query: query, args: args}, nil
}

// DB returns the underlying database.
func (s *Source) DB() *sql.DB { return s.db }

// Close closes the database if Open created it.
func (s *Source) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Rows implements tablegrid.RowSource. A positive limit wraps the query in
// a LIMIT clause.
func (s *Source) Rows(ctx context.Context, limit int) ([]tablegrid.Row, error) {
	query, args := s.query, s.args
	if limit > 0 {
		query = fmt.Sprintf("SELECT * FROM (%s) LIMIT ?", strings.TrimRight(strings.TrimSpace(query), ";"))
		args = append(append([]any(nil), args...), limit)
	}
	sqlRows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer sqlRows.Close()
	return scanRows(sqlRows)
}

func scanRows(sqlRows *sql.Rows) ([]tablegrid.Row, error) {
	colNames, err := sqlRows.Columns()
	if err != nil {
		return nil, err
	}

	var out []tablegrid.Row
	for sqlRows.Next() {
		ptrs := make([]any, len(colNames))
		for i := range ptrs {
			ptrs[i] = new(any)
		}
		if err := sqlRows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(tablegrid.Row, len(colNames))
		for i, name := range colNames {
			v := *(ptrs[i].(*any))
			// sqlite driver returns int64/float64/string/[]byte/nil
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[name] = v
		}
		out = append(out, row)
	}
	return out, sqlRows.Err()
}

// Load creates table and inserts rows into it. Columns are the union of the
// row keys in sorted order; their SQL type is taken from the first non-nil
// value seen.
func Load(ctx context.Context, db *sql.DB, table string, rows []tablegrid.Row) error {
	types := make(map[string]string)
	for _, row := range rows {
		for k, v := range row {
			if _, seen := types[k]; !seen || types[k] == "" {
				types[k] = sqlType(v)
			}
		}
	}
	if len(types) == 0 {
		return fmt.Errorf("load %s: rows have no columns", table)
	}
	cols := make([]string, 0, len(types))
	for k := range types {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	colDefs := make([]string, len(cols))
	for i, c := range cols {
		typ := types[c]
		if typ == "" {
			typ = "TEXT"
		}
		colDefs[i] = fmt.Sprintf(`"%s" %s`, sanitizeIdent(c), typ)
	}
	tableName := sanitizeIdent(table)
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE "%s" (%s)`, tableName, strings.Join(colDefs, ", "))); err != nil {
		return fmt.Errorf("create table %s: %w", tableName, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO "%s" VALUES (%s)`, tableName, placeholders))
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, row := range rows {
		vals := make([]any, len(cols))
		for i, c := range cols {
			vals[i] = row[c]
		}
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert into %s: %w", tableName, err)
		}
	}
	return tx.Commit()
}

func sqlType(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		return "INTEGER"
	case float32, float64:
		return "REAL"
	default:
		return "TEXT"
	}
}

func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
