package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const snapshotSchema = "demo"

// ResetService restores the live tables from a snapshot database file. It is
// used by demo deployments to throw away visitor edits.
type ResetService struct {
	db           *sql.DB
	snapshotPath string
	allowed      []string
}

// NewResetService builds a reset job over db. Only tables named in allowed
// are ever wiped or copied; the order of allowed is the copy order.
func NewResetService(db *sql.DB, snapshotPath string, allowed []string) *ResetService {
	return &ResetService{db: db, snapshotPath: snapshotPath, allowed: allowed}
}

// Reset wipes every allowed table and refills it from the snapshot inside a
// single transaction, then compacts the database. On failure nothing of the
// reset is visible.
func (s *ResetService) Reset(ctx context.Context) (err error) {
	if _, err := os.Stat(s.snapshotPath); err != nil {
		return fmt.Errorf("snapshot %q: %w", s.snapshotPath, err)
	}

	// ATTACH is per connection, so everything below runs on one.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS "+snapshotSchema, s.snapshotPath); err != nil {
		return fmt.Errorf("attach snapshot: %w", err)
	}
	attached := true
	defer func() {
		if !attached {
			return
		}
		if _, derr := conn.ExecContext(context.Background(), "DETACH DATABASE "+snapshotSchema); derr != nil {
			log.WithError(derr).Warn("detach snapshot, discarding connection")
			discard(conn)
		}
	}()

	tables, err := s.tables(ctx, conn, "main")
	if err != nil {
		return err
	}
	source, err := s.tables(ctx, conn, snapshotSchema)
	if err != nil {
		return err
	}
	inSnapshot := make(map[string]bool, len(source))
	for _, t := range source {
		inSnapshot[t] = true
	}

	if err := s.copyTables(ctx, conn, tables, inSnapshot); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, "DETACH DATABASE "+snapshotSchema); err != nil {
		return fmt.Errorf("detach snapshot: %w", err)
	}
	attached = false

	if _, err := conn.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

func (s *ResetService) copyTables(ctx context.Context, conn *sql.Conn, tables []string, inSnapshot map[string]bool) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM main."+quoteIdent(t)); err != nil {
			return fmt.Errorf("wipe %s: %w", t, err)
		}
	}
	for _, t := range tables {
		if !inSnapshot[t] {
			log.WithField("table", t).Warn("table missing from snapshot, left empty")
			continue
		}
		stmt := fmt.Sprintf("INSERT INTO main.%s SELECT * FROM %s.%s", quoteIdent(t), snapshotSchema, quoteIdent(t))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("copy %s: %w", t, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// tables lists the user tables of schema that are on the allow-list, in
// allow-list order. Anything else is logged and skipped.
func (s *ResetService) tables(ctx context.Context, conn *sql.Conn, schema string) ([]string, error) {
	rows, err := conn.QueryContext(ctx,
		"SELECT name FROM "+schema+".sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("list %s tables: %w", schema, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s tables: %w", schema, err)
	}

	out := make([]string, 0, len(s.allowed))
	for _, name := range s.allowed {
		if present[name] {
			out = append(out, name)
			delete(present, name)
		}
	}
	for name := range present {
		log.WithFields(log.Fields{"schema": schema, "table": name}).Warn("skipping table not on reset allow-list")
	}
	return out, nil
}

// discard keeps conn out of the pool. A connection that still has the
// snapshot attached would fail every later ATTACH.
func discard(conn *sql.Conn) {
	_ = conn.Raw(func(any) error { return driver.ErrBadConn })
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// RunReset executes one reset and logs the outcome; it is the scheduled job
// body and never returns an error to its caller.
func (s *ResetService) RunReset(ctx context.Context, observe func(time.Duration, error)) {
	start := time.Now()
	log.Debug("starting database reset")
	err := s.Reset(ctx)
	elapsed := time.Since(start)
	if observe != nil {
		observe(elapsed, err)
	}
	if err != nil {
		log.WithError(err).Error("failed to reset database")
		return
	}
	log.WithField("elapsed", elapsed).Info("database reset completed")
}
