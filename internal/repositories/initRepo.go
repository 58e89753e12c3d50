package repositories

import (
	"CafPlanner/internal/config"
	"CafPlanner/internal/migrator"
	"CafPlanner/internal/utils/logger/sl"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrStorageContention reports that a write kept hitting lock or
// serialization failures after the retry budget was exhausted.
var ErrStorageContention = errors.New("storage contention not resolved after retries")

const (
	retryAttempts = 3
	retryDelay    = 1 * time.Second
)

// Repository provides access to the database.
type Repository struct {
	DB     *sqlx.DB
	log    *slog.Logger
	schema string
}

// New creates a new repository, connects to the database, and runs migrations.
func New(logger *slog.Logger, cfg *config.Config) *Repository {
	op := "repositories.New()"
	log := logger.With(
		slog.String("op", op))

	username := cfg.DBConfig.User
	password := cfg.DBConfig.Password
	dbName := cfg.DBConfig.Name
	dbHost := cfg.DBConfig.Host
	dbPort := cfg.DBConfig.Port
	schema := cfg.DBConfig.Schema

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s sslmode=disable password=%s search_path=%s",
		dbHost, dbPort, username, dbName, password, schema)

	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Error("error connecting to database", sl.Err(err))
		panic("error connecting to database")
	}

	if err := conn.Ping(); err != nil {
		log.Error("error pinging database", sl.Err(err))
		panic("error pinging database")
	}

	log.Debug("sqlx connected to database")

	m := migrator.NewMigrator(conn, log, schema)
	if err := m.Run(); err != nil {
		log.Error("error running database migrations", sl.Err(err))
		panic("error running database migrations")
	}

	return &Repository{
		DB:     conn,
		log:    log,
		schema: schema,
	}
}

// Shutdown closes the database connection.
func (r *Repository) Shutdown(ctx context.Context) error {
	op := "Repository.Shutdown"
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("force exit %s: %w", op, ctx.Err())
		default:
			if err := r.DB.Close(); err != nil {
				return fmt.Errorf("error exit %s: %w", op, err)
			}
			return nil
		}
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isContention reports whether err is a transient lock or serialization
// failure worth retrying.
func isContention(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

// execRetry runs a write statement, retrying contention failures with a
// fixed delay before giving up.
func (r *Repository) execRetry(ctx context.Context, op, query string, args ...interface{}) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		_, err = r.DB.ExecContext(ctx, query, args...)
		if err == nil {
			return nil
		}
		if !isContention(err) {
			return fmt.Errorf("%s: %w", op, err)
		}
		r.log.Warn("database busy, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			sl.Err(err))
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(retryDelay):
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStorageContention, err)
}

// queryRowRetry runs a single-row write that returns values (RETURNING),
// under the same contention retry policy as execRetry.
func (r *Repository) queryRowRetry(ctx context.Context, op, query string, args []interface{}, dest ...interface{}) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = r.DB.QueryRowContext(ctx, query, args...).Scan(dest...)
		if err == nil {
			return nil
		}
		if !isContention(err) {
			return fmt.Errorf("%s: %w", op, err)
		}
		r.log.Warn("database busy, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			sl.Err(err))
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(retryDelay):
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStorageContention, err)
}
