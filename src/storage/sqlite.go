package storage

import (
	"database/sql"
	"fmt"
	"time"

	"unblocker/src/logger"
	"unblocker/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	// One writer; the HTTP handlers save concurrently
	db.SetMaxOpenConns(1)
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	// History survives restarts
	query := `
		CREATE TABLE IF NOT EXISTS proxy_attempts (
			request_id TEXT PRIMARY KEY,
			target_url TEXT,
			mode TEXT,
			outcome TEXT,
			method_id TEXT,
			method_name TEXT,
			attempts INTEGER,
			rounds INTEGER,
			error TEXT,
			started_at INTEGER,
			finished_at INTEGER
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create proxy_attempts: %w", err)
	}
	if _, err := d.DB.Exec("CREATE INDEX IF NOT EXISTS idx_proxy_attempts_finished ON proxy_attempts (finished_at)"); err != nil {
		return fmt.Errorf("failed to index proxy_attempts: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS visitor_stats (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			online INTEGER,
			peak INTEGER,
			total INTEGER,
			updated_at INTEGER
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create visitor_stats: %w", err)
	}

	// The method registry mirrors the current configuration
	if _, err := d.DB.Exec("DROP TABLE IF EXISTS proxy_methods"); err != nil {
		return fmt.Errorf("failed to drop proxy_methods: %w", err)
	}
	query = `
		CREATE TABLE proxy_methods (
			id TEXT PRIMARY KEY,
			position INTEGER,
			name TEXT,
			url TEXT,
			enabled INTEGER,
			strategy TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create proxy_methods: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) RegisterMethods(methods []models.MProxyMethod) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM proxy_methods"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO proxy_methods (id, position, name, url, enabled, strategy, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range methods {
		if _, err := stmt.Exec(m.ID, i, m.Name, m.URL, m.Enabled, m.Strategy, time.Now().UTC()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveAttempt(r models.MAttemptRecord) error {
	_, err := d.DB.Exec(`
		INSERT INTO proxy_attempts (`+attemptColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RequestID, r.TargetURL, r.Mode, r.Outcome, r.MethodID, r.MethodName,
		r.Attempts, r.Rounds, r.Error, toMillis(r.StartedAt), toMillis(r.FinishedAt))
	return err
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) RecentAttempts(limit int) ([]models.MAttemptRecord, error) {
	rows, err := d.DB.Query(`
		SELECT `+attemptColumns+`
		FROM proxy_attempts
		ORDER BY finished_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanAttempts(rows)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveVisitorStats(s models.MVisitorStats) error {
	_, err := d.DB.Exec(`
		INSERT INTO visitor_stats (id, online, peak, total, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			online = excluded.online,
			peak = excluded.peak,
			total = excluded.total,
			updated_at = excluded.updated_at
	`, s.Online, s.Peak, s.Total, toMillis(s.LastUpdated))
	return err
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) LoadVisitorStats() (*models.MVisitorStats, error) {
	row := d.DB.QueryRow("SELECT online, peak, total, updated_at FROM visitor_stats WHERE id = 1")
	return scanVisitorStats(row)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.DataRetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	res, err := d.DB.Exec("DELETE FROM proxy_attempts WHERE finished_at < ?", cutoff)
	if err != nil {
		d.Logger.Error("Cleanup proxy_attempts error: %v", err)
		return err
	}

	if n, _ := res.RowsAffected(); n > 0 {
		d.Logger.Info("Cleanup removed %d attempts older than %d days", n, retentionDays)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
