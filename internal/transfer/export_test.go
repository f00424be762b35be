package transfer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSpaceStripsItemIDs(t *testing.T) {
	live := Space{
		ID:       "s1",
		Name:     "Main",
		IconType: "emoji",
		Apps: []AppItem{
			{ID: "i1", Type: ItemFolder, Title: "f", Children: []AppItem{{ID: "i2", Type: ItemApp, Title: "a", URL: "https://a"}}},
		},
	}

	got := ExportSpace(live)

	assert.Equal(t, TypeSingleSpace, got.Type)
	require.NotNil(t, got.SchemaVersion)
	assert.Equal(t, CurrentSchemaVersion, *got.SchemaVersion)
	assert.Empty(t, got.Data.Apps[0].ID)
	assert.Empty(t, got.Data.Apps[0].Children[0].ID)
	assert.Equal(t, "i2", live.Apps[0].Children[0].ID, "live space must be untouched")
}

func TestExporterSingleAndBundle(t *testing.T) {
	store := &fakeStore{spaces: liveSpaces("Main", "Work")}
	exp := NewExporter(store)
	ctx := context.Background()

	var buf bytes.Buffer
	result, err := exp.Export(ctx, &buf, ExportOptions{IDs: []string{"live-Work"}})
	require.NoError(t, err)
	assert.Equal(t, TypeSingleSpace, result.Type)
	assert.Equal(t, 1, result.Spaces)

	decoded, err := DecodeReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Work", decoded.Spaces()[0].Name)

	buf.Reset()
	result, err = exp.Export(ctx, &buf, ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, TypeMultiSpace, result.Type)
	assert.Equal(t, 2, result.Spaces)

	buf.Reset()
	result, err = exp.Export(ctx, &buf, ExportOptions{IDs: []string{"live-Main"}, Bundle: true})
	require.NoError(t, err)
	assert.Equal(t, TypeMultiSpace, result.Type)
}

func TestExporterNothingToExport(t *testing.T) {
	exp := NewExporter(&fakeStore{})

	var buf bytes.Buffer
	_, err := exp.Export(context.Background(), &buf, ExportOptions{})
	assert.ErrorIs(t, err, ErrNoSpacesSelected)
	assert.Zero(t, buf.Len())
}

func TestExportImportRoundTrip(t *testing.T) {
	source := &fakeStore{spaces: []Space{
		{ID: "1", Name: "Main", IconType: "emoji", Apps: []AppItem{app("a", "https://a"), folder("f", app("b", "https://b"))}},
	}}
	var buf bytes.Buffer
	_, err := NewExporter(source).Export(context.Background(), &buf, ExportOptions{})
	require.NoError(t, err)

	payload, err := DecodeReader(&buf)
	require.NoError(t, err)

	target := &fakeStore{}
	result, err := newTestImporter(target).Commit(context.Background(), payload, ImportOptions{})
	require.NoError(t, err)

	require.Len(t, target.spaces, 1)
	assert.Equal(t, "Main", target.spaces[0].Name)
	assert.Equal(t, source.spaces[0].Apps, target.spaces[0].Apps)
	assert.Equal(t, 3, result.Preview.TotalAppItems)
}
