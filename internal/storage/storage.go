package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"medicine-reminder/internal/models"
	"medicine-reminder/internal/retry"
)

// Store persists the full AppData aggregate as one pretty-printed JSON
// file. Saves go through a temp file in the same directory followed by
// a rename, so a crash mid-write never leaves a truncated primary file.
type Store struct {
	path   string
	policy retry.Policy
}

func New(path string) *Store {
	return &Store{
		path: path,
		policy: retry.Policy{
			Attempts: 3,
			Backoff:  retry.Linear(100 * time.Millisecond),
		},
	}
}

// Load reads the state file. A missing file yields fresh defaults. A
// file that cannot be parsed is moved aside to a timestamped backup and
// also yields defaults; corruption is never fatal.
func (s *Store) Load() (*models.AppData, error) {
	var raw []byte
	err := s.policy.Do(context.Background(), func(context.Context) error {
		b, err := os.ReadFile(s.path)
		if errors.Is(err, os.ErrNotExist) {
			raw = nil
			return nil
		}
		raw = b
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if raw == nil {
		return models.NewAppData(), nil
	}

	data := models.NewAppData()
	if err := json.Unmarshal(raw, data); err != nil {
		backup := fmt.Sprintf("%s.backup.%d", s.path, time.Now().Unix())
		if werr := os.WriteFile(backup, raw, 0o644); werr != nil {
			log.Println("failed to back up corrupt state file:", werr)
		} else {
			log.Printf("state file unreadable (%v), backed up to %s", err, backup)
		}
		return models.NewAppData(), nil
	}
	if data.Medicines == nil {
		data.Medicines = make(map[string]*models.Medicine)
	}
	if data.PendingReminders == nil {
		data.PendingReminders = make(map[string]*models.PendingReminder)
	}
	if data.UserSettings.Language == "" {
		data.UserSettings = models.DefaultSettings()
	}
	return data, nil
}

// Save atomically replaces the state file with the given aggregate.
func (s *Store) Save(data *models.AppData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	err = s.policy.Do(context.Background(), func(context.Context) error {
		tmp := s.path + ".tmp"
		if err := os.WriteFile(tmp, raw, 0o644); err != nil {
			return err
		}
		return os.Rename(tmp, s.path)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Path returns the primary file location. Backups land next to it.
func (s *Store) Path() string { return s.path }
