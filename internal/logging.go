package internal

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

const LogFileName = "olympus-camctl.log"

// ConfigureLogger sets the global log level and format. Logs go to
// LogFileName inside logDir, or to stderr when logDir is "" or "-".
// The returned file, if any, must be closed by the caller.
func ConfigureLogger(logDir, level string) (*os.File, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetOutput(os.Stderr)
	if logDir == "" || logDir == "-" {
		return nil, nil
	}

	logPath := filepath.Join(logDir, LogFileName)
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file %s: %w", logPath, err)
	}
	log.SetOutput(f)
	return f, nil
}

// GetBinaryDir returns the directory configuration files are looked up in by default.
func GetBinaryDir() string {
	currentDir, _ := os.Getwd()
	return currentDir
}
