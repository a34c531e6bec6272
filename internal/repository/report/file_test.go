package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/driver-sentry/internal/domain/behavior"
)

// TestFileRepositoryRoundTrip verifies rows survive a save/load cycle in order.
func TestFileRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.json")
	repo := NewFileRepository(path)

	rows := []behavior.SummaryRow{
		{Tag: "cellphone", TotalSeconds: 4.2, EverTriggered: true},
		{Tag: "eating", TotalSeconds: 0.9, EverTriggered: false},
	}

	require.NoError(t, repo.Save(context.Background(), rows))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, rows, loaded)
}

// TestFileRepositoryLoadMissing verifies a missing report yields ErrNotFound.
func TestFileRepositoryLoadMissing(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "absent.json"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

// TestFileRepositorySaveOverwrites verifies a second save replaces the first.
func TestFileRepositorySaveOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.json")
	repo := NewFileRepository(path)

	require.NoError(t, repo.Save(context.Background(), []behavior.SummaryRow{
		{Tag: "smoking", TotalSeconds: 1.5, EverTriggered: false},
	}))

	updated := []behavior.SummaryRow{
		{Tag: "smoking", TotalSeconds: 6.0, EverTriggered: true},
	}
	require.NoError(t, repo.Save(context.Background(), updated))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, updated, loaded)
}
