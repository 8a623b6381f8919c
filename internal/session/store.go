package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a session.
type Status string

const (
	StatusActive      Status = "active"
	StatusComplete    Status = "complete"
	StatusError       Status = "error"
	StatusInterrupted Status = "interrupted"
)

// Session is one chat transcript stored in the database.
type Session struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary,omitempty"` // First user message, truncated
	Model     string    `json:"model"`
	Status    Status    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one conversation entry within a session.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Sequence  int       `json:"sequence"`
}

// Store is the interface for session persistence.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context, limit int) ([]Session, error)
	Delete(ctx context.Context, id string) error

	AddMessage(ctx context.Context, sessionID string, msg *Message) error
	GetMessages(ctx context.Context, sessionID string) ([]Message, error)

	UpdateStatus(ctx context.Context, id string, status Status) error

	Close() error
}

// Config holds session storage configuration.
type Config struct {
	Enabled bool `mapstructure:"enabled"`
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// GetDataDir returns the XDG data directory for quicker-llm.
// Uses $XDG_DATA_HOME if set, otherwise ~/.local/share
func GetDataDir() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "quicker-llm"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "quicker-llm"), nil
}

// GetDBPath returns the path to the sessions database.
func GetDBPath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "sessions.db"), nil
}

// NewStore creates a Store based on the configuration. Disabled sessions get
// a no-op store.
func NewStore(cfg Config) (Store, error) {
	if !cfg.Enabled {
		return &NoopStore{}, nil
	}
	return NewSQLiteStore()
}

// TruncateSummary returns the first line of content, truncated to 100 chars.
func TruncateSummary(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "\n"); idx != -1 {
		content = content[:idx]
	}
	if len(content) > 100 {
		content = content[:97] + "..."
	}
	return content
}
