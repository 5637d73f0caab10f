package database

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/OCAP2/annotations/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID   uint
	Text string
}

func newTestManager(t *testing.T) (*Manager, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	m := NewManager(zerolog.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { _ = m.Close() })
	return m, &buf
}

func TestPostgresDSN(t *testing.T) {
	cfg := config.DBConfig{Host: "h", Port: "1", Username: "u", Password: "p", Database: "d"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", PostgresDSN(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, PostgresDSN(cfg), "sslmode=require")
}

func TestOpenSqlite_InMemory(t *testing.T) {
	m, logs := newTestManager(t)

	db, err := m.OpenSqlite("")
	require.NoError(t, err)
	assert.True(t, m.IsValid)
	assert.True(t, m.InMemory)
	assert.Contains(t, logs.String(), "Using SQLite DB in memory")

	require.NoError(t, m.Migrate(&note{}))
	require.NoError(t, db.Create(&note{Text: "hi"}).Error)

	var got note
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "hi", got.Text)
}

func TestOpenSqlite_InMemoryIsPrivate(t *testing.T) {
	a, _ := newTestManager(t)
	b, _ := newTestManager(t)

	dbA, err := a.OpenSqlite("")
	require.NoError(t, err)
	_, err = b.OpenSqlite("")
	require.NoError(t, err)

	require.NoError(t, a.Migrate(&note{}))
	require.NoError(t, dbA.Create(&note{Text: "only in a"}).Error)
	assert.False(t, b.DB.Migrator().HasTable(&note{}))
}

func TestOpenSqlite_FileAndDump(t *testing.T) {
	dir := t.TempDir()
	m, _ := newTestManager(t)

	db, err := m.OpenSqlite(filepath.Join(dir, "live.db"))
	require.NoError(t, err)
	assert.False(t, m.InMemory)
	require.NoError(t, m.Migrate(&note{}))
	require.NoError(t, db.Create(&note{Text: "saved"}).Error)

	dump := filepath.Join(dir, "dump.db")
	require.NoError(t, os.WriteFile(dump, []byte("stale"), 0644))
	require.NoError(t, m.DumpToDisk(dump))

	other, _ := newTestManager(t)
	odb, err := other.OpenSqlite(dump)
	require.NoError(t, err)
	var got note
	require.NoError(t, odb.First(&got).Error)
	assert.Equal(t, "saved", got.Text)
}

func TestManager_NotConnected(t *testing.T) {
	m, _ := newTestManager(t)
	assert.ErrorIs(t, m.Migrate(&note{}), ErrNotConnected)
	assert.ErrorIs(t, m.DumpToDisk("x.db"), ErrNotConnected)
	assert.NoError(t, m.Close())
}

func TestManager_DumpNeedsPath(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.OpenSqlite("")
	require.NoError(t, err)
	assert.ErrorIs(t, m.DumpToDisk(""), ErrNoDumpPath)
}
