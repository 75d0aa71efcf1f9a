package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"grislo/internal/config"
	"grislo/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService_PerformBackup(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "grislo.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.InsertReservation(context.Background(), models.Reservation{
		ID: "r1", Date: "2025-06-01", Time: "09:00", Status: models.StatusConfirmed, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.Close())

	backupDir := filepath.Join(dir, "backups")
	logger := zerolog.Nop()
	svc := NewBackupService(dbPath, config.BackupConfig{
		Enabled:     true,
		StoragePath: backupDir,
	}, &logger)

	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// The backup is a readable database with the same data.
	restored, err := NewSQLiteStore(filepath.Join(backupDir, entries[0].Name()))
	require.NoError(t, err)
	defer restored.Close()
	rs, err := restored.LoadReservations(context.Background())
	require.NoError(t, err)
	assert.Len(t, rs, 1)
}

func TestBackupService_CleanupOldBackups(t *testing.T) {
	backupDir := t.TempDir()
	oldFile := filepath.Join(backupDir, "backup_20200101_000000.db")
	require.NoError(t, os.WriteFile(oldFile, []byte("stale"), 0o644))
	old := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(oldFile, old, old))

	freshFile := filepath.Join(backupDir, "backup_fresh.db")
	require.NoError(t, os.WriteFile(freshFile, []byte("fresh"), 0o644))

	logger := zerolog.Nop()
	svc := NewBackupService("", config.BackupConfig{
		Enabled:       true,
		StoragePath:   backupDir,
		RetentionDays: 7,
	}, &logger)
	svc.CleanupOldBackups()

	_, err := os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err), "stale backup removed")
	_, err = os.Stat(freshFile)
	assert.NoError(t, err, "recent backup kept")
}
