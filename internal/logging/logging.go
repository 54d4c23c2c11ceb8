package logging

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	fileMaxSizeMB  = 1
	fileMaxBackups = 2
)

// New builds the process logger. Production logs are JSON; everything else is
// human readable text. A non-empty file additionally receives every entry as
// JSON, rotated once it reaches fileMaxSizeMB.
func New(env, level, file string) (*logrus.Logger, error) {
	logger := logrus.New()
	if env == "prod" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(lvl)

	visible := 0
	if env == "dev" {
		visible = 2
	}
	logger.AddHook(&EmailHook{Visible: visible})
	if file != "" {
		logger.AddHook(NewFileHook(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
		}))
	}
	return logger, nil
}

// EmailHook masks the "email" field of every entry before it is written.
type EmailHook struct {
	Visible int
}

func (h *EmailHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *EmailHook) Fire(entry *logrus.Entry) error {
	email, ok := entry.Data["email"].(string)
	if !ok {
		return nil
	}
	entry.Data["email"] = Obfuscate(email, h.Visible)
	return nil
}

// FileHook mirrors entries to w as JSON lines. It must be added after
// EmailHook so the written entry is already masked.
type FileHook struct {
	w         io.Writer
	formatter logrus.Formatter
}

func NewFileHook(w io.Writer) *FileHook {
	return &FileHook{w: w, formatter: &logrus.JSONFormatter{}}
}

func (h *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *FileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("format log entry: %w", err)
	}
	_, err = h.w.Write(line)
	return err
}

// Obfuscate keeps the first visible characters of the local part and the
// domain, replacing the rest of the local part with '*'.
func Obfuscate(email string, visible int) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return strings.Repeat("*", utf8.RuneCountInString(email))
	}
	local, domain := []rune(email[:at]), email[at:]
	if visible < 0 {
		visible = 0
	}
	if visible > len(local) {
		visible = len(local)
	}
	return string(local[:visible]) + strings.Repeat("*", len(local)-visible) + domain
}
