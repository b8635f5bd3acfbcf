package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; the first readable one wins.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads variables from the first .env file found in the working
// directory. Variables already set in the process environment are kept.
func loadEnvFile() {
	for _, path := range envFiles {
		err := godotenv.Load(path)
		if err == nil {
			slog.Debug("Loaded environment variables", "file", path)
			return
		}
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Ignoring unreadable env file", "file", path, "error", err)
		}
	}
}
