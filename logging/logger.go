package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/sheetsync/config"
	"github.com/grovetools/sheetsync/pkg/paths"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Environment variables read when a logger is built.
const (
	EnvLevel  = "SHEETSYNC_LOG_LEVEL"
	EnvCaller = "SHEETSYNC_LOG_CALLER"
	EnvDebug  = "SHEETSYNC_DEBUG"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	// levelOverride is set by SetLevel and wins over config and env.
	levelOverride *logrus.Level
)

// NewLogger returns the configured logger for a component. Each component
// is built once; later calls return the same entry.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	var logCfg Config
	if cfg, err := config.LoadDefault(); err == nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}

	entry := build(component, logCfg, isInteractive())
	loggers[component] = entry
	return entry
}

// SetLevel forces the level of every existing and future component logger.
func SetLevel(level logrus.Level) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	levelOverride = &level
	for _, entry := range loggers {
		entry.Logger.SetLevel(level)
		if level >= logrus.DebugLevel && entry.Logger.Out == io.Discard {
			entry.Logger.SetOutput(os.Stderr)
		}
	}
}

func build(component string, logCfg Config, interactive bool) *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(resolveLevel(logCfg))

	if os.Getenv(EnvCaller) == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer
	if logCfg.File.Enabled {
		if file, err := openLogFile(logFilePath(component, logCfg.File.Path)); err == nil {
			writers = append(writers, file)
		} else {
			logrus.Warnf("Failed to open log file: %v", err)
		}
	}

	if toStderr(logCfg.Format.StructuredToStderr, logger.GetLevel(), interactive) {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger.WithField("component", component)
}

func resolveLevel(logCfg Config) logrus.Level {
	if levelOverride != nil {
		return *levelOverride
	}
	levelStr := "info"
	if env := os.Getenv(EnvLevel); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// toStderr decides whether structured logs reach stderr. In auto mode they
// only do so when debugging or when stderr is not a terminal, so interactive
// sessions stay clean.
func toStderr(mode string, level logrus.Level, interactive bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		isDebug := os.Getenv(EnvDebug) == "1" || level >= logrus.DebugLevel
		return isDebug || !interactive
	}
}

func isInteractive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// logFilePath returns the configured path, or <state dir>/logs/<component>-<date>.log.
func logFilePath(component, configured string) string {
	if configured != "" {
		return expandPath(configured)
	}
	return filepath.Join(paths.LogDir(), fmt.Sprintf("%s-%s.log", component, time.Now().Format("2006-01-02")))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if expanded, err := paths.Expand(path); err == nil {
		return expanded
	}
	return path
}
