package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/masdens1250/appamine/core/settings"
)

// Logger records every message it receives.
type Logger struct {
	mu       sync.Mutex
	Messages []string
	Errors   []string
}

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("[%s] %s", level, msg)
	l.Messages = append(l.Messages, line)
	if level == "ERROR" || level == "FATAL" {
		l.Errors = append(l.Errors, msg)
	}
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("FATAL", msg) }

// ErrorCount returns the number of error messages logged so far.
func (l *Logger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Errors)
}

// SettingsStore is an in-memory settings.Repository that can block its reads and fail on demand.
type SettingsStore struct {
	mu       sync.Mutex
	settings *settings.Settings
	Err      error
	// Gate, when set, holds every GetSettings call until it is closed.
	Gate chan struct{}
}

func NewSettingsStore(s *settings.Settings) *SettingsStore {
	return &SettingsStore{settings: s}
}

func (st *SettingsStore) GetSettings(ctx context.Context) (settings.Settings, error) {
	if st.Gate != nil {
		select {
		case <-st.Gate:
		case <-ctx.Done():
			return settings.Settings{}, ctx.Err()
		}
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return settings.Settings{}, st.Err
	}
	if st.settings == nil {
		return settings.Settings{}, settings.ErrNotFound
	}
	return *st.settings, nil
}

func (st *SettingsStore) SaveSettings(_ context.Context, s settings.Settings) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return st.Err
	}
	st.settings = &s
	return nil
}

// OpenDB opens a private in-memory sqlite database, closed when the test ends.
func OpenDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("OpenDB(): %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
