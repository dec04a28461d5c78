package storage

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"unblocker/src/logger"
	"unblocker/src/models"
)

func newTestSQLite(t *testing.T) *AsyncSQLiteDB {
	t.Helper()
	cfg := &models.MConfig{
		Storage: models.MStorageConfig{
			DBType:            "sqlite",
			DBPath:            filepath.Join(t.TempDir(), "test.db"),
			DataRetentionDays: 7,
		},
	}
	db, err := NewAsyncSQLiteDB(cfg, logger.NewLoggerTo(&bytes.Buffer{}, "DEBUG", "SQLiteDB"))
	if err != nil {
		t.Fatalf("NewAsyncSQLiteDB: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func record(id string, finished time.Time) models.MAttemptRecord {
	return models.MAttemptRecord{
		RequestID:  id,
		TargetURL:  "https://example.com",
		Mode:       "auto",
		Outcome:    models.OutcomeSuccess,
		MethodID:   "allorigins",
		MethodName: "All Origins",
		Attempts:   2,
		Rounds:     1,
		StartedAt:  finished.Add(-time.Second),
		FinishedAt: finished,
	}
}

func TestSQLiteAttemptsNewestFirst(t *testing.T) {
	db := newTestSQLite(t)
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 5; i++ {
		if err := db.SaveAttempt(record(fmt.Sprintf("req-%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("SaveAttempt: %v", err)
		}
	}

	got, err := db.RecentAttempts(3)
	if err != nil {
		t.Fatalf("RecentAttempts: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	for i, want := range []string{"req-4", "req-3", "req-2"} {
		if got[i].RequestID != want {
			t.Errorf("record %d = %s, want %s", i, got[i].RequestID, want)
		}
	}
	if !got[0].FinishedAt.Equal(base.Add(4*time.Second)) || got[0].Attempts != 2 || got[0].MethodName != "All Origins" {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
}

func TestSQLiteCleanupOldData(t *testing.T) {
	db := newTestSQLite(t)
	now := time.Now().UTC()

	db.SaveAttempt(record("old", now.AddDate(0, 0, -30)))
	db.SaveAttempt(record("fresh", now))

	if err := db.CleanupOldData(); err != nil {
		t.Fatalf("CleanupOldData: %v", err)
	}
	got, err := db.RecentAttempts(10)
	if err != nil {
		t.Fatalf("RecentAttempts: %v", err)
	}
	if len(got) != 1 || got[0].RequestID != "fresh" {
		t.Fatalf("after cleanup got %+v", got)
	}
}

func TestSQLiteVisitorStats(t *testing.T) {
	db := newTestSQLite(t)

	none, err := db.LoadVisitorStats()
	if err != nil || none != nil {
		t.Fatalf("empty LoadVisitorStats = (%+v, %v), want (nil, nil)", none, err)
	}

	stamp := time.Now().UTC().Truncate(time.Millisecond)
	if err := db.SaveVisitorStats(models.MVisitorStats{Online: 5, Peak: 150, Total: 6000, LastUpdated: stamp}); err != nil {
		t.Fatalf("SaveVisitorStats: %v", err)
	}
	if err := db.SaveVisitorStats(models.MVisitorStats{Online: 7, Peak: 160, Total: 6001, LastUpdated: stamp}); err != nil {
		t.Fatalf("SaveVisitorStats overwrite: %v", err)
	}

	got, err := db.LoadVisitorStats()
	if err != nil {
		t.Fatalf("LoadVisitorStats: %v", err)
	}
	if got.Online != 7 || got.Peak != 160 || got.Total != 6001 || !got.LastUpdated.Equal(stamp) {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestSQLiteRegisterMethods(t *testing.T) {
	db := newTestSQLite(t)
	methods := []models.MProxyMethod{
		{ID: "allorigins", Name: "All Origins", URL: "https://api.allorigins.win/raw?url=", Enabled: true},
		{ID: "jsonp", Name: "JSONP", Enabled: false, Strategy: "jsonp"},
	}

	if err := db.RegisterMethods(methods); err != nil {
		t.Fatalf("RegisterMethods: %v", err)
	}
	// Re-registering replaces the registry
	if err := db.RegisterMethods(methods[:1]); err != nil {
		t.Fatalf("RegisterMethods again: %v", err)
	}

	var count int
	if err := db.DB.QueryRow("SELECT COUNT(*) FROM proxy_methods").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("registry has %d rows, want 1", count)
	}
}

func TestSQLiteHistorySurvivesReinitialize(t *testing.T) {
	db := newTestSQLite(t)
	db.SaveAttempt(record("kept", time.Now()))

	if err := db.createTables(); err != nil {
		t.Fatalf("createTables: %v", err)
	}
	got, err := db.RecentAttempts(10)
	if err != nil || len(got) != 1 {
		t.Fatalf("history lost after re-create: %+v, %v", got, err)
	}
}
