package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"roomserve/common/database"
	"roomserve/common/logger"
	"roomserve/internal/config"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <migration_file.sql>...\n", os.Args[0])
		os.Exit(2)
	}

	cfg := config.Load()
	log, err := logger.NewLogger(cfg.Log.Level, "console", "apply-migration")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("cannot connect to database", zap.Error(err))
	}
	defer database.Close(db)
	log.Info("connected to database", zap.String("database", cfg.Database.Database))

	for _, file := range os.Args[1:] {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Fatal("failed to read migration file", zap.String("file", file), zap.Error(err))
		}
		statements := splitStatements(string(content))
		for i, stmt := range statements {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			_, err := db.ExecContext(ctx, stmt)
			cancel()
			if err != nil {
				log.Fatal("failed to execute statement",
					zap.String("file", file),
					zap.Int("statement", i+1),
					zap.String("sql", stmt[:min(100, len(stmt))]),
					zap.Error(err),
				)
			}
		}
		log.Info("migration applied", zap.String("file", file), zap.Int("statements", len(statements)))
	}
}

// splitStatements splits on ";" and drops empty and comment-only chunks.
// The schema files contain no function bodies, so no dollar quoting is handled.
func splitStatements(content string) []string {
	var out []string
	for _, stmt := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		s := strings.TrimSpace(strings.Join(lines, "\n"))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
