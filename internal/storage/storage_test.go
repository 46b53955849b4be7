package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicine-reminder/internal/models"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "medicine_data.json"))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s := tempStore(t)
	data, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, data.Medicines)
	assert.Empty(t, data.PendingReminders)
	assert.Equal(t, models.DefaultSettings(), data.UserSettings)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := tempStore(t)

	data := models.NewAppData()
	m := models.NewMedicine("Vitamin C", 30, []string{"08:00", "20:00"})
	// A wall-clock UTC timestamp survives the JSON round trip exactly;
	// time.Now()'s monotonic reading would not.
	m.CreatedAt = time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	data.Medicines[m.ID] = m
	r := models.NewPendingReminder(m.ID, m.Name, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	r.IncrementReminder(time.Date(2025, 6, 1, 8, 6, 0, 0, time.UTC))
	data.PendingReminders[r.ID] = r
	data.UserSettings.Language = "zh"

	require.NoError(t, s.Save(data))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
}

func TestSaveEmptyStateRoundTrips(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(models.NewAppData()))
	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, models.NewAppData(), loaded)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(models.NewAppData()))
	_, err := os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveIsPrettyPrinted(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(models.NewAppData()))
	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  ")
}

func TestLoadCorruptFileBacksUpAndDefaults(t *testing.T) {
	s := tempStore(t)
	garbage := []byte("{ this is not json")
	require.NoError(t, os.WriteFile(s.Path(), garbage, 0o644))

	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, models.NewAppData(), data)

	matches, err := filepath.Glob(s.Path() + ".backup.*")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	backed, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, garbage, backed)
}

func TestLoadOldSchemaDefaultsSettings(t *testing.T) {
	s := tempStore(t)
	// A file written before userSettings existed.
	old := map[string]any{
		"medicines":        map[string]any{},
		"pendingReminders": map[string]any{},
	}
	raw, err := json.Marshal(old)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(), raw, 0o644))

	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), data.UserSettings)
	assert.NotNil(t, data.Medicines)
	assert.NotNil(t, data.PendingReminders)
}
