package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Log общий логгер приложения
var Log = logrus.New()

// LoggerOptions описывает настройки логирования
type LoggerOptions struct {
	Level  string
	Format string
	File   string
}

// ConfigureLogger настраивает уровень, формат и вывод логгера
func ConfigureLogger(opts LoggerOptions) error {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	Log.SetLevel(level)

	switch opts.Format {
	case "json":
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		Log.SetOutput(os.Stdout)
		return nil
	}

	// Создаем директорию для логов, если она не существует
	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	Log.SetOutput(io.MultiWriter(os.Stdout, file))
	return nil
}

func caller() string {
	_, file, line, _ := runtime.Caller(2)
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// LogInfo логирует информационное сообщение
func LogInfo(format string, v ...interface{}) {
	Log.WithField("caller", caller()).Infof(format, v...)
}

// LogError логирует сообщение об ошибке
func LogError(format string, v ...interface{}) {
	Log.WithField("caller", caller()).Errorf(format, v...)
}

// LogDebug логирует отладочное сообщение
func LogDebug(format string, v ...interface{}) {
	Log.WithField("caller", caller()).Debugf(format, v...)
}

// LogOperation логирует операцию с длительностью выполнения
func LogOperation(operation string, startTime time.Time, err error) {
	entry := Log.WithFields(logrus.Fields{
		"operation": operation,
		"duration":  time.Since(startTime).String(),
	})
	if err != nil {
		entry.WithError(err).Warn("operation failed")
		return
	}
	entry.Debug("operation completed")
}
