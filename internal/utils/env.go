package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/kelsos/teknify/internal/logger"
)

// LoadEnvironment loads environment variables from .env files.
// It tries the current directory first and then the directory of the executable.
// Variables already present in the environment are never overridden.
func LoadEnvironment() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found in current directory or error loading it: %v", err)
	} else {
		logger.Debug("Successfully loaded .env file from current directory")
	}

	execPath, err := os.Executable()
	if err != nil {
		logger.Debug("Could not determine executable path: %v", err)
		return
	}

	execDir := filepath.Dir(execPath)
	envPath := filepath.Join(execDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		logger.Debug("No .env file found in app directory (%s) or error loading it: %v", execDir, err)
	} else {
		logger.Debug("Successfully loaded .env file from app directory: %s", execDir)
	}
}
