package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"xscraper/pkg/logger"
)

// Session records the state of a multi-scope capture run so an interrupted
// run can be resumed without recapturing finished scopes.
type Session struct {
	Account       string         `json:"account"`
	Identity      string         `json:"identity"`
	PendingScopes []string       `json:"pending_scopes"`
	CurrentScope  string         `json:"current_scope"`
	ScrollBudget  int            `json:"scroll_budget"`
	Flushed       map[string]int `json:"flushed"` // scope -> record count
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Version       int            `json:"version"`
}

// Manager handles session persistence
type Manager struct {
	sessionPath string
	logger      logger.Logger
}

// NewManager creates a new session manager for the given account
func NewManager(account string) (*Manager, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}

	sessionsDir := filepath.Join(dataDir, "sessions")
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	sessionPath := filepath.Join(sessionsDir, fmt.Sprintf("%s.session.json", account))

	return &Manager{
		sessionPath: sessionPath,
		logger:      logger.GetLogger(),
	}, nil
}

// Create creates and saves a fresh session
func (m *Manager) Create(account string, scopes []string, budget int) (*Session, error) {
	session := &Session{
		Account:       account,
		PendingScopes: scopes,
		ScrollBudget:  budget,
		Flushed:       make(map[string]int),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
		Version:       1,
	}

	if err := m.Save(session); err != nil {
		return nil, fmt.Errorf("failed to save initial session: %w", err)
	}

	m.logger.InfoWithFields("capture session created", map[string]interface{}{
		"account": account,
		"scopes":  scopes,
		"path":    m.sessionPath,
	})

	return session, nil
}

// Load loads an existing session, returning nil when none exists
func (m *Manager) Load() (*Session, error) {
	file, err := os.Open(m.sessionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	var session Session
	if err := json.NewDecoder(file).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &session, nil
}

// Save saves the session to disk atomically
func (m *Manager) Save(session *Session) error {
	session.UpdatedAt = time.Now()

	tempPath := m.sessionPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary session file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(session); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync session file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tempPath, m.sessionPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return nil
}

// Delete removes the session file
func (m *Manager) Delete() error {
	if err := os.Remove(m.sessionPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Exists checks if a session file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.sessionPath)
	return err == nil
}

// BeginScope records the scope now being captured
func (m *Manager) BeginScope(session *Session, scope string, pending []string) error {
	session.CurrentScope = scope
	session.PendingScopes = pending
	return m.Save(session)
}

// CompleteScope records a confirmed flush for a scope
func (m *Manager) CompleteScope(session *Session, scope string, records int) error {
	session.Flushed[scope] = records
	session.CurrentScope = ""
	return m.Save(session)
}

// SetIdentity records the resolved account identity
func (m *Manager) SetIdentity(session *Session, identity string) error {
	session.Identity = identity
	return m.Save(session)
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "xscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "xscraper")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "xscraper")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "xscraper")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
