package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"unblocker/src/logger"
	"unblocker/src/models"

	"github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Schema is named after the executable
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

// table returns the schema-qualified, quoted table name
func (d *PostgresDB) table(name string) string {
	return pq.QuoteIdentifier(d.Schema) + "." + pq.QuoteIdentifier(name)
}

// copyMethods is the COPY statement that bulk loads the method registry
func (d *PostgresDB) copyMethods() string {
	return pq.CopyInSchema(d.Schema, "proxy_methods", "id", "position", "name", "url", "enabled", "strategy", "updated_at")
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pq.QuoteIdentifier(d.Schema))); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			request_id TEXT PRIMARY KEY,
			target_url TEXT,
			mode TEXT,
			outcome TEXT,
			method_id TEXT,
			method_name TEXT,
			attempts INTEGER,
			rounds INTEGER,
			error TEXT,
			started_at BIGINT,
			finished_at BIGINT
		);
	`, d.table("proxy_attempts"))
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create proxy_attempts: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			online INTEGER,
			peak INTEGER,
			total INTEGER,
			updated_at BIGINT
		);
	`, d.table("visitor_stats"))
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create visitor_stats: %w", err)
	}

	methodsTable := d.table("proxy_methods")
	if _, err := d.DB.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, methodsTable)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", methodsTable, err)
	}
	query = fmt.Sprintf(`
		CREATE TABLE %s (
			id TEXT PRIMARY KEY,
			position INTEGER,
			name TEXT,
			url TEXT,
			enabled BOOLEAN,
			strategy TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`, methodsTable)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", methodsTable, err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) RegisterMethods(methods []models.MProxyMethod) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s`, d.table("proxy_methods"))); err != nil {
		return err
	}

	// Bulk load through COPY
	stmt, err := tx.Prepare(d.copyMethods())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for i, m := range methods {
		if _, err := stmt.Exec(m.ID, i, m.Name, m.URL, m.Enabled, m.Strategy, now); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveAttempt(r models.MAttemptRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, d.table("proxy_attempts"), attemptColumns)
	_, err := d.DB.Exec(query, r.RequestID, r.TargetURL, r.Mode, r.Outcome, r.MethodID, r.MethodName,
		r.Attempts, r.Rounds, r.Error, toMillis(r.StartedAt), toMillis(r.FinishedAt))
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) RecentAttempts(limit int) ([]models.MAttemptRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY finished_at DESC
		LIMIT $1
	`, attemptColumns, d.table("proxy_attempts"))
	rows, err := d.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	return scanAttempts(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveVisitorStats(s models.MVisitorStats) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, online, peak, total, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			online = EXCLUDED.online,
			peak = EXCLUDED.peak,
			total = EXCLUDED.total,
			updated_at = EXCLUDED.updated_at
	`, d.table("visitor_stats"))
	_, err := d.DB.Exec(query, s.Online, s.Peak, s.Total, toMillis(s.LastUpdated))
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) LoadVisitorStats() (*models.MVisitorStats, error) {
	row := d.DB.QueryRow(fmt.Sprintf(`SELECT online, peak, total, updated_at FROM %s WHERE id = 1`, d.table("visitor_stats")))
	return scanVisitorStats(row)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.DataRetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE finished_at < $1`, d.table("proxy_attempts")), cutoff); err != nil {
		d.Logger.Error("Cleanup proxy_attempts error: %v", err)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
