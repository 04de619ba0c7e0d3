package main

import (
	"os"
	"path/filepath"
	"sort"

	"barbershop/internal/config"
	"barbershop/internal/db"
	"barbershop/internal/logger"

	"github.com/joho/godotenv"
)

// Applies every .sql file under migrations/ in lexical order. Files are
// written to be idempotent (CREATE ... IF NOT EXISTS), so re-running is safe.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Log.Sync()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalw("database connection failed", "error", err)
	}
	defer database.Close()

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Log.Fatalw("cannot read migrations directory", "dir", dir, "error", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, name := range files {
		path := filepath.Join(dir, name)
		contents, err := os.ReadFile(path)
		if err != nil {
			logger.Log.Fatalw("cannot read migration", "file", path, "error", err)
		}
		if _, err := database.Exec(string(contents)); err != nil {
			logger.Log.Fatalw("migration failed", "file", path, "error", err)
		}
		logger.Log.Infow("migration applied", "file", name)
	}
	logger.Log.Infow("migrations complete", "count", len(files))
}
