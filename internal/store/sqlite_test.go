package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/cycles/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "cycles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(s string) time.Time {
	d, _ := time.Parse(dayLayout, s)
	return d
}

func sampleEntries() []domain.Entry {
	return []domain.Entry{
		{Date: day("2024-01-01"), Kind: domain.KindFlow, Flow: "heavy", Rank: 4},
		{Date: day("2024-01-01"), Kind: domain.KindDevice, Device: "iud_inserted"},
		{Date: day("2024-01-03"), Kind: domain.KindSpotting, Flow: "spotting", Rank: 1},
	}
}

func TestReplaceAndListEntries(t *testing.T) {
	s := newTestStore(t)

	imp, err := s.ReplaceEntries("export.json", sampleEntries(), 7)
	require.NoError(t, err)
	assert.NotEmpty(t, imp.ID)
	assert.Equal(t, 3, imp.Entries)
	assert.Equal(t, 7, imp.Discarded)

	entries, err := s.ListEntries()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i, want := range sampleEntries() {
		got := entries[i]
		assert.NotEmpty(t, got.ID)
		got.ID = ""
		assert.Equal(t, want, got)
	}
}

func TestReplaceEntriesDropsPreviousSnapshot(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ReplaceEntries("first.json", sampleEntries(), 0)
	require.NoError(t, err)
	second, err := s.ReplaceEntries("second.json", sampleEntries()[:1], 2)
	require.NoError(t, err)

	entries, err := s.ListEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	latest, err := s.LatestImport()
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "second.json", latest.Source)

	imports, err := s.ListImports(10)
	require.NoError(t, err)
	assert.Len(t, imports, 2)
}

func TestLatestImportEmpty(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LatestImport()
	assert.ErrorIs(t, err, ErrNoImports)

	entries, err := s.ListEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
