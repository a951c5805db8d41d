package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/forecast-report-service/internal/domain"
	"github.com/couchcryptid/forecast-report-service/internal/observability"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/insert-report.sql
var insertReportSQL string

//go:embed sql/get-latest-report.sql
var getLatestReportSQL string

// Archive stores rendered reports in SQLite.
// It implements pipeline.BatchLoader.
type Archive struct {
	db      *sql.DB
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Open opens (creating if needed) the SQLite archive at path and applies the schema.
// The special path ":memory:" gives a private in-memory archive.
func Open(path string, metrics *observability.Metrics, logger *slog.Logger) (*Archive, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// One writer at a time; also keeps a :memory: database on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Archive{db: db, metrics: metrics, logger: logger}, nil
}

// LoadBatch archives a batch of reports in one transaction.
func (a *Archive) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := a.insert(ctx, events); err != nil {
		a.metrics.ArchiveWrites.WithLabelValues("error").Add(float64(len(events)))
		return err
	}
	a.metrics.ArchiveWrites.WithLabelValues("success").Add(float64(len(events)))
	return nil
}

func (a *Archive) insert(ctx context.Context, events []domain.OutputEvent) (err error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				a.logger.Error("rollback archive tx", "error", rbErr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertReportSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		dayCount, _ := strconv.Atoi(e.Headers[domain.HeaderDayCount])
		generatedAt := e.Headers[domain.HeaderGeneratedAt]
		if generatedAt == "" {
			generatedAt = domain.Now().Format(time.RFC3339)
		}
		if _, err = stmt.ExecContext(ctx, string(e.Key), generatedAt, dayCount, string(e.Value)); err != nil {
			return fmt.Errorf("insert report %q: %w", e.Key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// Latest returns the most recently generated report for key, or
// domain.ErrReportNotFound.
func (a *Archive) Latest(ctx context.Context, key string) (domain.ArchivedReport, error) {
	var (
		r           domain.ArchivedReport
		generatedAt string
	)
	err := a.db.QueryRowContext(ctx, getLatestReportSQL, key).Scan(&r.Key, &generatedAt, &r.DayCount, &r.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ArchivedReport{}, domain.ErrReportNotFound
	}
	if err != nil {
		return domain.ArchivedReport{}, fmt.Errorf("query latest report: %w", err)
	}
	if r.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt); err != nil {
		return domain.ArchivedReport{}, fmt.Errorf("parse generated_at %q: %w", generatedAt, err)
	}
	return r, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func buildDSN(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}

	params := "_busy_timeout=5000&_journal_mode=WAL"
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + params, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return fmt.Sprintf("file:%s?%s", path, params), nil
}
