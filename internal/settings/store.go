// internal/settings/store.go
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WalletRecord is the persisted metadata for an embedded wallet. All fields
// come from the provisioning service; none of them gate correctness.
type WalletRecord struct {
	Address           string    `json:"address"`
	Balance           string    `json:"balance,omitempty"`
	SubOrganizationID string    `json:"subOrganizationId,omitempty"`
	UserID            string    `json:"userId,omitempty"`
	UserEmail         string    `json:"userEmail,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty"`
}

// Settings is the flat per-installation record.
type Settings struct {
	Enabled bool          `json:"enabled"`
	Wallet  *WalletRecord `json:"wallet,omitempty"`
}

// Store persists Settings as a single JSON file. Writes go through a temp
// file and rename so a crash never leaves a truncated record.
type Store struct {
	path   string
	logger *zap.Logger

	mu       sync.Mutex
	settings Settings
}

// NewStore loads the settings file at path, creating defaults (enabled) when
// the file does not exist yet.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		path:     path,
		logger:   logger.Named("settings"),
		settings: Settings{Enabled: true},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s.settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

// Get returns a copy of the current settings. The wallet record is copied
// too so callers cannot mutate the store's state behind the mutex.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.settings
	if out.Wallet != nil {
		w := *out.Wallet
		out.Wallet = &w
	}
	return out
}

// SetEnabled sets the enabled flag and persists.
func (s *Store) SetEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Enabled = enabled
	return s.save()
}

// Toggle flips the enabled flag, persists, and returns the new value.
func (s *Store) Toggle() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Enabled = !s.settings.Enabled
	if err := s.save(); err != nil {
		return false, err
	}
	return s.settings.Enabled, nil
}

// SetWallet stores the wallet record and persists.
func (s *Store) SetWallet(w *WalletRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Wallet = w
	return s.save()
}

// save writes the settings atomically. Caller holds s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace settings: %w", err)
	}

	s.logger.Debug("settings saved", zap.Bool("enabled", s.settings.Enabled))
	return nil
}
