// Package history records past evaluations in a SQL database so earlier
// results can be listed and re-rendered.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/dshills/cfrscore/internal/schema"
)

// Driver selects the database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Default DSNs used when Open is given an empty dsn.
const (
	DefaultSQLiteDSN   = "file:cfrscore.db?_pragma=busy_timeout(5000)"
	DefaultPostgresDSN = "postgres://localhost:5432/cfrscore?sslmode=disable"
)

// DefaultDSN returns the local default DSN for driver, or "" for an
// unsupported driver.
func DefaultDSN(driver Driver) string {
	switch driver {
	case DriverSQLite:
		return DefaultSQLiteDSN
	case DriverPostgres:
		return DefaultPostgresDSN
	}
	return ""
}

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("history: evaluation not found")

// Record is one stored evaluation.
type Record struct {
	ID        int64
	CreatedAt time.Time
	Document  string
	DocHash   string
	Heading   string
	Profile   string
	Model     string
	Score     int
	Rating    schema.Rating
	Result    *schema.Result
}

// Store is an open history database.
type Store struct {
	db     *sql.DB
	driver Driver
}

// Open opens the database and ensures the schema exists. An empty dsn selects
// a local default for the driver.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
	default:
		return nil, fmt.Errorf("history: unsupported driver %q", driver)
	}
	if dsn == "" {
		dsn = DefaultDSN(driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: schema: %w", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureSchema(ctx context.Context) error {
	ddl := schemaSQLite
	if s.driver == DriverPostgres {
		ddl = schemaPostgres
	}
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS evaluations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  created_at INTEGER NOT NULL,
  document TEXT NOT NULL DEFAULT '',
  doc_hash TEXT NOT NULL DEFAULT '',
  heading TEXT NOT NULL DEFAULT '',
  profile TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  overall_score INTEGER NOT NULL,
  overall_rating TEXT NOT NULL,
  result_json TEXT NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS evaluations (
  id BIGSERIAL PRIMARY KEY,
  created_at BIGINT NOT NULL,
  document TEXT NOT NULL DEFAULT '',
  doc_hash TEXT NOT NULL DEFAULT '',
  heading TEXT NOT NULL DEFAULT '',
  profile TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  overall_score INTEGER NOT NULL,
  overall_rating TEXT NOT NULL,
  result_json TEXT NOT NULL
);
`

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	out := make([]byte, 0, len(q)+8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, q[i])
	}
	return string(out)
}

// Save stores res and returns its id. CreatedAt defaults to now.
func (s *Store) Save(ctx context.Context, res *schema.Result, createdAt time.Time) (int64, error) {
	if res == nil {
		return 0, fmt.Errorf("history: save: nil result")
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	body, err := json.Marshal(res)
	if err != nil {
		return 0, fmt.Errorf("history: save: marshal: %w", err)
	}
	args := []any{
		createdAt.Unix(), res.Document, res.Meta.DocHash, res.Heading, res.Meta.Profile, res.Meta.Model,
		res.Evaluation.OverallScore, string(res.Evaluation.OverallRating), string(body),
	}
	const insert = `INSERT INTO evaluations
  (created_at, document, doc_hash, heading, profile, model, overall_score, overall_rating, result_json)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if s.driver == DriverPostgres {
		var id int64
		if err := s.db.QueryRowContext(ctx, s.rebind(insert)+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("history: save: %w", err)
		}
		return id, nil
	}
	r, err := s.db.ExecContext(ctx, insert, args...)
	if err != nil {
		return 0, fmt.Errorf("history: save: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: save: last id: %w", err)
	}
	return id, nil
}

// List returns up to limit records, newest first, without their results.
// limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	q := `SELECT id, created_at, document, doc_hash, heading, profile, model, overall_score, overall_rating
  FROM evaluations ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			created int64
			rating  string
		)
		if err := rows.Scan(&r.ID, &created, &r.Document, &r.DocHash, &r.Heading, &r.Profile, &r.Model, &r.Score, &rating); err != nil {
			return nil, fmt.Errorf("history: list: scan: %w", err)
		}
		r.CreatedAt = time.Unix(created, 0)
		r.Rating = schema.Rating(rating)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return out, nil
}

// Get returns the record with the given id, including its stored result.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	const q = `SELECT id, created_at, document, doc_hash, heading, profile, model, overall_score, overall_rating, result_json
  FROM evaluations WHERE id = ?`
	var (
		r       Record
		created int64
		rating  string
		body    string
	)
	err := s.db.QueryRowContext(ctx, s.rebind(q), id).
		Scan(&r.ID, &created, &r.Document, &r.DocHash, &r.Heading, &r.Profile, &r.Model, &r.Score, &rating, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("history: get %d: %w", id, err)
	}
	r.CreatedAt = time.Unix(created, 0)
	r.Rating = schema.Rating(rating)
	r.Result = &schema.Result{}
	if err := json.Unmarshal([]byte(body), r.Result); err != nil {
		return nil, fmt.Errorf("history: get %d: decode result: %w", id, err)
	}
	return &r, nil
}
