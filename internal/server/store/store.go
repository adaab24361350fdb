// Package store opens the relational database, applies migrations and
// exposes one generic Gateway per table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/audiokeeper/internal/server/migrations"
	"github.com/dmitrijs2005/audiokeeper/internal/server/models"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// gooseUpContext is a seam for tests.
var gooseUpContext = goose.UpContext

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Config selects the driver and connection string.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// SQLiteDSN turns a file path into a DSN with the pragmas the gateway
// relies on: foreign keys, a busy timeout and write-locking transactions.
func SQLiteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

// PostgresDSN builds a connection URL from its parts.
func PostgresDSN(host string, port int, user, password, database string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Store owns the connection pool and the per-table gateways.
type Store struct {
	db         *sqlx.DB
	txOpts     *sql.TxOptions
	users      *Gateway[models.User, *models.User]
	audioFiles *Gateway[models.AudioFile, *models.AudioFile]
}

// Option customises a Store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the clock used for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Open connects to the database described by cfg and verifies the connection.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if cfg.Driver != DriverPostgres && cfg.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if cfg.DSN == "" {
		return nil, errors.New("empty database dsn")
	}

	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return New(db, opts...), nil
}

// New wraps an existing connection. The transaction options follow the
// driver: serializable isolation on PostgreSQL, BEGIN IMMEDIATE on SQLite
// (set through the DSN).
func New(db *sqlx.DB, opts ...Option) *Store {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	var txOpts *sql.TxOptions
	if db.DriverName() != DriverSQLite {
		txOpts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	return &Store{
		db:         db,
		txOpts:     txOpts,
		users:      NewGateway[models.User](db, UsersTable, txOpts, o.now),
		audioFiles: NewGateway[models.AudioFile](db, AudioFilesTable, txOpts, o.now),
	}
}

// Users is the gateway for the users table.
func (s *Store) Users() *Gateway[models.User, *models.User] {
	return s.users
}

// AudioFiles is the gateway for the audio_files table.
func (s *Store) AudioFiles() *Gateway[models.AudioFile, *models.AudioFile] {
	return s.audioFiles
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunMigrations applies the embedded migrations.
func (s *Store) RunMigrations(ctx context.Context) error {
	dialect := "postgres"
	if s.db.DriverName() == DriverSQLite {
		dialect = "sqlite3"
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	if err := gooseUpContext(ctx, s.db.DB, "."); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	return nil
}
