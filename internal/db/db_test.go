package db

import (
	"testing"
	"testing/fstest"

	"github.com/johnswift/eclipse/internal/transfer"
	"github.com/johnswift/eclipse/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"010_late.sql":  {Data: []byte("SELECT 1;")},
		"001_first.sql": {Data: []byte("SELECT 1;")},
		"README.md":     {Data: []byte("notes")},
		"002_next.sql":  {Data: []byte("SELECT 1;")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first.sql", "002_next.sql", "010_late.sql"}, files)
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := migrationFiles(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_spaces.sql", "002_app_embeddings.sql"}, files)
}

func TestPendingMigrations(t *testing.T) {
	files := []string{"001_spaces.sql", "002_app_embeddings.sql", "003_next.sql"}

	assert.Equal(t, files, pendingMigrations(files, nil))
	assert.Equal(t, []string{"003_next.sql"}, pendingMigrations(files, map[string]bool{
		"001_spaces.sql":         true,
		"002_app_embeddings.sql": true,
	}))
	assert.Empty(t, pendingMigrations(files[:1], map[string]bool{"001_spaces.sql": true}))
}

func TestFlattenApps(t *testing.T) {
	items := []transfer.AppItem{
		{Type: transfer.ItemApp, Title: "Mail", URL: "https://mail.example"},
		{Type: transfer.ItemFolder, Title: "Dev", Children: []transfer.AppItem{
			{Type: transfer.ItemApp, Title: "Git", URL: "https://git.example"},
			{Type: transfer.ItemFolder, Title: "Docs", Children: []transfer.AppItem{
				{Type: transfer.ItemApp, Title: "Go", URL: "https://go.dev"},
			}},
		}},
	}

	rows := FlattenApps(items)

	want := []AppRow{
		{Path: "0", Type: transfer.ItemApp, Title: "Mail", URL: "https://mail.example"},
		{Path: "1", Type: transfer.ItemFolder, Title: "Dev"},
		{Path: "1/0", Type: transfer.ItemApp, Title: "Git", URL: "https://git.example"},
		{Path: "1/1", Type: transfer.ItemFolder, Title: "Docs"},
		{Path: "1/1/0", Type: transfer.ItemApp, Title: "Go", URL: "https://go.dev"},
	}
	assert.Equal(t, want, rows)
}

func TestFlattenAppsEmpty(t *testing.T) {
	assert.Empty(t, FlattenApps(nil))
	assert.Empty(t, FlattenApps([]transfer.AppItem{}))
}

func TestOrderByIDs(t *testing.T) {
	spaces := []transfer.Space{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got, err := orderByIDs(spaces, []string{"c", "a"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)

	_, err = orderByIDs(spaces, []string{"a", "zzz"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarshalAppsNil(t *testing.T) {
	data, err := marshalApps(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
