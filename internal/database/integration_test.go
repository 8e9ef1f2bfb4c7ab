package database

import (
	"path/filepath"
	"testing"
)

const testMigrationsPath = "../../migrations"

func openMigrated(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "integration.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(testMigrationsPath); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)

	tables := []string{
		"users", "sessions", "student_profiles", "teacher_profiles", "teacher_students",
		"games", "game_sessions", "assignments", "assignment_targets", "assignment_submissions",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	var games int
	if err := db.QueryRow("SELECT COUNT(*) FROM games").Scan(&games); err != nil {
		t.Fatalf("Failed to count games: %v", err)
	}
	if games == 0 {
		t.Error("expected default games to be seeded")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	if err := db.RunMigrations(testMigrationsPath); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("migrations recorded = %d, want 2", count)
	}
}

func TestWithTx(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)

	insert := "INSERT INTO users (email, full_name, role) VALUES (?, ?, ?)"

	err := db.WithTx(func(tx *Tx) error {
		_, err := tx.ExecReturningID(insert, "kept@example.com", "Kept", "student")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() commit path error = %v", err)
	}

	errBoom := errTest("boom")
	err = db.WithTx(func(tx *Tx) error {
		if _, err := tx.Exec(insert, "dropped@example.com", "Dropped", "student"); err != nil {
			return err
		}
		return errBoom
	})
	if err != errBoom {
		t.Fatalf("WithTx() error = %v, want %v", err, errBoom)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("users after commit+rollback = %d, want 1", count)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
