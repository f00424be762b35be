package transfer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBuildPreviewRenamesCollision(t *testing.T) {
	payload := SinglePayload(singleExport(nil, space("Main")))

	got := BuildPreview(payload, liveSpaces("Main"))

	assert.Equal(t, 1, got.NameConflicts)
	assert.Equal(t, []PreviewItem{{OriginalName: "Main", FinalName: "Main (1)", AppItemCount: 0}}, got.Items)
}

func TestBuildPreviewCountsItemsTransitively(t *testing.T) {
	payload := SinglePayload(singleExport(nil, space("Work",
		app("Mail", "https://mail.example.com"),
		folder("Docs", app("Drive", "https://drive.example.com")),
	)))

	got := BuildPreview(payload, nil)

	assert.Equal(t, 3, got.TotalAppItems)
	assert.Equal(t, 3, got.Items[0].AppItemCount)
	assert.Equal(t, 0, got.NameConflicts)
}

func TestBuildPreviewResolvesInOrder(t *testing.T) {
	payload := MultiPayload(multiExport(nil,
		space("Main", app("a", "https://a")),
		space("Main"),
		space("Main (1)"),
		space("Work", folder("f")),
		space("Home"),
	))

	got := BuildPreview(payload, liveSpaces("Main", "Main (2)", "Home"))

	want := Preview{
		IncomingSpaces: 5,
		SelectedSpaces: 5,
		NameConflicts:  4,
		TotalAppItems:  2,
		Items: []PreviewItem{
			{OriginalName: "Main", FinalName: "Main (1)", AppItemCount: 1},
			{OriginalName: "Main", FinalName: "Main (3)", AppItemCount: 0},
			{OriginalName: "Main (1)", FinalName: "Main (1) (1)", AppItemCount: 0},
			{OriginalName: "Work", FinalName: "Work", AppItemCount: 1},
			{OriginalName: "Home", FinalName: "Home (1)", AppItemCount: 0},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildPreview mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPreviewDuplicatesWithinBatch(t *testing.T) {
	payload := MultiPayload(multiExport(nil, space("Work"), space("Work"), space("Work")))

	got := BuildPreview(payload, nil)

	assert.Equal(t, 2, got.NameConflicts)
	assert.Equal(t, "Work", got.Items[0].FinalName)
	assert.Equal(t, "Work (1)", got.Items[1].FinalName)
	assert.Equal(t, "Work (2)", got.Items[2].FinalName)
}

func TestBuildPreviewDoesNotMutateInputs(t *testing.T) {
	existing := liveSpaces("Main")
	bundle := multiExport(nil, space("Main"))

	BuildPreview(MultiPayload(bundle), existing)

	assert.Equal(t, "Main", existing[0].Name)
	assert.Equal(t, "Main", bundle.Data.Spaces[0].Name)
}

func TestBuildPreviewEmptyPayload(t *testing.T) {
	got := BuildPreview(ImportPayload{}, liveSpaces("Main"))

	assert.Equal(t, 0, got.IncomingSpaces)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}

func TestCountAppItemsStopsAtMaxDepth(t *testing.T) {
	assert.Equal(t, MaxItemDepth, CountAppItems(nested(MaxItemDepth)))
	assert.Equal(t, MaxItemDepth, CountAppItems(nested(MaxItemDepth+5)))
}
