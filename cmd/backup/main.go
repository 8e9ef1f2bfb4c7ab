// Command backup exports a learnplay database to JSON and restores it.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"learnplay/internal/config"
	"learnplay/internal/database"
	"learnplay/internal/service"
)

// Child rows first
var clearOrder = []string{
	"assignment_submissions",
	"assignment_targets",
	"assignments",
	"game_sessions",
	"teacher_students",
	"teacher_profiles",
	"student_profiles",
	"sessions",
	"users",
}

const usage = `LearnPlay Database Backup Tool

Usage:
  backup export [-output file]           Write the database to a JSON file
  backup import -input file [-clear]     Restore a JSON backup

The import target must hold no users; -clear empties it first (asks for
confirmation, -yes skips the prompt). Seeded games are replaced by the
backed-up catalogue.

Environment:
  DB_TYPE        sqlite, postgres or mysql (default: sqlite)
  DB_PATH        SQLite database path (default: ./learnplay.db)
  DATABASE_URL   PostgreSQL or MySQL connection URL
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "export":
		err = runExport(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Print(usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func openDatabase() (*database.DB, error) {
	cfg := config.Load()
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("output", "", "Output file path (default: learnplay_backup_YYYYMMDD_HHMMSS.json)")
	fs.Parse(args)

	path := *output
	if path == "" {
		path = fmt.Sprintf("learnplay_backup_%s.json", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := service.NewBackupService(db).Export(path); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil {
		log.Printf("Wrote %s (%.1f KB)", path, float64(info.Size())/1024)
	}
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	input := fs.String("input", "", "Backup file to restore (required)")
	clearFirst := fs.Bool("clear", false, "Delete existing users and activity before importing")
	yes := fs.Bool("yes", false, "Do not ask before clearing")
	fs.Parse(args)

	if *input == "" {
		fs.PrintDefaults()
		return errors.New("-input is required")
	}
	if _, err := os.Stat(*input); err != nil {
		return fmt.Errorf("cannot read backup: %w", err)
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if *clearFirst {
		if !*yes && !confirm("This deletes every user, session and assignment. Type 'yes' to continue: ") {
			log.Println("Import cancelled")
			return nil
		}
		if err := clearDatabase(db); err != nil {
			return err
		}
	}

	return service.NewBackupService(db).Import(*input)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}

func clearDatabase(db *database.DB) error {
	// One transaction so a failed clear leaves the data untouched
	return db.WithTx(func(tx *database.Tx) error {
		for _, table := range clearOrder {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			log.Printf("Cleared table: %s", table)
		}
		return nil
	})
}
