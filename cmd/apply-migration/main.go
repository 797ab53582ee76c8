package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"hostel-portal/common/database"
	"hostel-portal/common/logger"
	"hostel-portal/internal/config"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <migration_file.sql> [more.sql ...]\n", os.Args[0])
		return 2
	}

	cfg := config.Load()
	log, err := logger.NewLogger(cfg.Log.Level, "console", "apply-migration")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Error("Cannot connect to database", zap.String("dsn", cfg.Database.Redacted()), zap.Error(err))
		return 1
	}
	defer database.Close(db)
	log.Info("Connected to database", zap.String("dsn", cfg.Database.Redacted()))

	for _, file := range os.Args[1:] {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Error("Failed to read migration file", zap.String("file", file), zap.Error(err))
			return 1
		}
		statements := splitStatements(string(content))
		if err := applyFile(db, statements, log); err != nil {
			log.Error("Migration rolled back", zap.String("file", file), zap.Error(err))
			return 1
		}
		log.Info("Migration applied", zap.String("file", file), zap.Int("statements", len(statements)))
	}
	return 0
}

// applyFile runs one file's statements in a single transaction.
func applyFile(db *sql.DB, statements []string, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("statement %d (%s): %w", i+1, preview(stmt), err)
		}
		log.Debug("Statement executed", zap.Int("statement", i+1), zap.String("sql", preview(stmt)))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// splitStatements drops "--" comment lines and splits on semicolons. The
// schema files contain no function bodies, so a semicolon always ends a
// statement.
func splitStatements(sqlText string) []string {
	var b strings.Builder
	for _, line := range strings.Split(sqlText, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	var out []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func preview(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if len(stmt) > 100 {
		return stmt[:100] + "..."
	}
	return stmt
}
