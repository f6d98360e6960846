package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"reflect"
	"strings"
)

// QueryParams narrows down the rows read from a table.
type QueryParams struct {
	// Where is a condition without the WHERE keyword, for example
	// "EntryIndex = ?". Its placeholders are filled from Args.
	Where string
	Args  []any

	// OrderBy is a column list without the ORDER BY keywords.
	OrderBy string

	// Limit caps the number of rows returned. 0 returns all rows.
	Limit  int
	Offset int
}

func (p QueryParams) whereClause() string {
	if p.Where == "" {
		return ""
	}

	return " WHERE " + p.Where
}

func (p QueryParams) selectClauses() string {
	var b strings.Builder

	b.WriteString(p.whereClause())

	if p.OrderBy != "" {
		b.WriteString(" ORDER BY " + p.OrderBy)
	}

	if p.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", p.Limit)

		if p.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", p.Offset)
		}
	}

	return b.String()
}

// DataReader reads back the tables written by a DataRecorder.
type DataReader interface {
	// ListTables returns the names of the tables in the database, sorted.
	ListTables(ctx context.Context) ([]string, error)

	// Count returns the number of rows of table matching params.Where.
	Count(ctx context.Context, table string, params QueryParams) (int, error)

	// Rows runs a select over table. The caller closes the returned rows.
	Rows(ctx context.Context, table string, params QueryParams) (
		*sql.Rows, error)

	Close() error
}

type sqliteReader struct {
	db *sql.DB
}

// NewReader opens the database file at path for reading.
func NewReader(path string) DataReader {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		panic(err)
	}

	return NewReaderWithDB(db)
}

// NewReaderWithDB reads from an already opened database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{db: db}
}

func (r *sqliteReader) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func (r *sqliteReader) Count(
	ctx context.Context,
	table string,
	params QueryParams,
) (int, error) {
	var count int

	query := "SELECT COUNT(*) FROM " + table + params.whereClause()

	err := r.db.QueryRowContext(ctx, query, params.Args...).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *sqliteReader) Rows(
	ctx context.Context,
	table string,
	params QueryParams,
) (*sql.Rows, error) {
	query := "SELECT * FROM " + table + params.selectClauses()

	return r.db.QueryContext(ctx, query, params.Args...)
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}

// Select reads the rows of table into values of the struct type T. Columns
// are matched to fields by name, the way the writer names them. Columns with
// no field are skipped. The returned count ignores Limit and Offset.
func Select[T any](
	ctx context.Context,
	r DataReader,
	table string,
	params QueryParams,
) ([]T, int, error) {
	rowType := reflect.TypeOf((*T)(nil)).Elem()
	if rowType.Kind() != reflect.Struct {
		log.Panicf("cannot select rows into %s, a struct is required", rowType)
	}

	total, err := r.Count(ctx, table, params)
	if err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", table, err)
	}

	rows, err := r.Rows(ctx, table, params)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, 0, err
	}

	fields := make(map[string]int, rowType.NumField())
	for i := 0; i < rowType.NumField(); i++ {
		fields[rowType.Field(i).Name] = i
	}

	var results []T

	for rows.Next() {
		var row T

		value := reflect.ValueOf(&row).Elem()
		targets := make([]any, len(columns))

		for i, column := range columns {
			index, ok := fields[column]
			if !ok {
				targets[i] = new(any)
				continue
			}

			targets[i] = value.Field(index).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, 0, fmt.Errorf("scanning %s: %w", table, err)
		}

		results = append(results, row)
	}

	return results, total, rows.Err()
}
