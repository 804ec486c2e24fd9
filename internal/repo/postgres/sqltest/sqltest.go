// Package sqltest serves canned query results through database/sql so stores
// can be tested without a server.
package sqltest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
)

// Result answers one query. Rows must match Columns in length.
type Result struct {
	Columns []string
	Rows    [][]driver.Value
	Err     error
}

type Query struct {
	SQL  string
	Args []any
}

// Recorder hands out canned results in order and records every statement.
type Recorder struct {
	mu      sync.Mutex
	results []Result
	queries []Query
}

// Open returns a *sql.DB backed by results.
func Open(results ...Result) (*sql.DB, *Recorder) {
	rec := &Recorder{results: results}
	return sql.OpenDB(connector{rec: rec}), rec
}

func (r *Recorder) Queries() []Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Query(nil), r.queries...)
}

func (r *Recorder) record(query string, args []driver.NamedValue) {
	values := make([]any, 0, len(args))
	for _, arg := range args {
		values = append(values, arg.Value)
	}
	r.mu.Lock()
	r.queries = append(r.queries, Query{SQL: query, Args: values})
	r.mu.Unlock()
}

func (r *Recorder) next() (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.results) == 0 {
		return Result{}, errors.New("sqltest: no result queued")
	}
	res := r.results[0]
	r.results = r.results[1:]
	return res, nil
}

type connector struct {
	rec *Recorder
}

func (c connector) Connect(context.Context) (driver.Conn, error) {
	return &conn{rec: c.rec}, nil
}

func (c connector) Driver() driver.Driver { return drv{rec: c.rec} }

type drv struct {
	rec *Recorder
}

func (d drv) Open(string) (driver.Conn, error) { return &conn{rec: d.rec}, nil }

type conn struct {
	rec *Recorder
}

func (c *conn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("sqltest: prepared statements not supported")
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) {
	return nil, errors.New("sqltest: transactions not supported")
}

func (c *conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.rec.record(query, args)
	res, err := c.rec.next()
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return &rows{columns: res.Columns, data: res.Rows}, nil
}

func (c *conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.rec.record(query, args)
	return driver.RowsAffected(1), nil
}

type rows struct {
	columns []string
	data    [][]driver.Value
	pos     int
}

func (r *rows) Columns() []string { return r.columns }

func (r *rows) Close() error { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}
