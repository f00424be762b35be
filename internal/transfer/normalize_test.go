package transfer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSingleMissingVersion(t *testing.T) {
	in := singleExport(nil, space("Main", app("Mail", "https://mail.example.com")))

	out, err := NormalizeSingle(in)
	require.NoError(t, err)
	require.NotNil(t, out.SchemaVersion)
	assert.Equal(t, CurrentSchemaVersion, *out.SchemaVersion)
	assert.Equal(t, TypeSingleSpace, out.Type)
	assert.Equal(t, "Main", out.Data.Name)

	assert.Nil(t, in.SchemaVersion, "input must not be modified")
}

func TestNormalizeMultiMissingVersion(t *testing.T) {
	in := multiExport(nil, space("A"), space("B"))

	out, err := NormalizeMulti(in)
	require.NoError(t, err)
	require.NotNil(t, out.SchemaVersion)
	assert.Equal(t, CurrentSchemaVersion, *out.SchemaVersion)
	assert.Len(t, out.Data.Spaces, 2)
}

func TestNormalizeRejectsNewerSchema(t *testing.T) {
	newer := CurrentSchemaVersion + 1

	_, err := NormalizeSingle(singleExport(&newer, space("Main")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedSchemaVersion))

	var versionErr *UnsupportedSchemaVersionError
	require.True(t, errors.As(err, &versionErr))
	assert.Equal(t, newer, versionErr.Got)
	assert.Equal(t, CurrentSchemaVersion, versionErr.Current)
	assert.Contains(t, err.Error(), "current is 1")

	_, err = NormalizeMulti(multiExport(&newer, space("A")))
	assert.ErrorIs(t, err, ErrUnsupportedSchemaVersion)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	legacy := 0
	inputs := []ImportPayload{
		SinglePayload(singleExport(nil, space("Main", app("a", "https://a"), folder("f", app("b", "https://b"))))),
		SinglePayload(singleExport(&legacy, space("Main"))),
		MultiPayload(multiExport(nil, space("A", app("a", "https://a")), space("B"))),
	}

	for _, in := range inputs {
		once, err := Normalize(in)
		require.NoError(t, err)
		twice, err := Normalize(once)
		require.NoError(t, err)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("second normalization changed payload (-once +twice):\n%s", diff)
		}
	}
}

func TestNormalizeCanonicalizesTypeAlias(t *testing.T) {
	in := singleExport(nil, space("Main"))
	in.Type = "single-space-export"

	out, err := NormalizeSingle(in)
	require.NoError(t, err)
	assert.Equal(t, TypeSingleSpace, out.Type)
}

func TestNormalizeStructuralErrors(t *testing.T) {
	negative := -1

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "single with multi type",
			run: func() error {
				in := singleExport(nil, space("Main"))
				in.Type = TypeMultiSpace
				_, err := NormalizeSingle(in)
				return err
			},
			want: ErrInvalidPayload,
		},
		{
			name: "multi without spaces",
			run: func() error {
				_, err := NormalizeMulti(&MultiSpaceExportData{Type: TypeMultiSpace})
				return err
			},
			want: ErrInvalidPayload,
		},
		{
			name: "negative version",
			run: func() error {
				_, err := NormalizeSingle(singleExport(&negative, space("Main")))
				return err
			},
			want: ErrInvalidPayload,
		},
		{
			name: "unknown item type",
			run: func() error {
				_, err := NormalizeSingle(singleExport(nil, space("Main", AppItem{Type: "widget", Title: "w"})))
				return err
			},
			want: ErrInvalidPayload,
		},
		{
			name: "too deep",
			run: func() error {
				_, err := NormalizeSingle(singleExport(nil, space("Main", nested(MaxItemDepth+1)...)))
				return err
			},
			want: ErrItemTooDeep,
		},
		{
			name: "nil single",
			run: func() error {
				_, err := NormalizeSingle(nil)
				return err
			},
			want: ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}

func TestNormalizeAcceptsMaxDepth(t *testing.T) {
	_, err := NormalizeSingle(singleExport(nil, space("Main", nested(MaxItemDepth)...)))
	assert.NoError(t, err)
}

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	in := singleExport(nil, space("Main", folder("f", app("a", "https://a"))))

	out, err := NormalizeSingle(in)
	require.NoError(t, err)

	out.Data.Apps[0].Children[0].Title = "changed"
	assert.Equal(t, "a", in.Data.Apps[0].Children[0].Title)
}

func TestNormalizeDefaultsVersionAndApps(t *testing.T) {
	in := &SpaceExportData{Type: TypeSingleSpace, Data: SpacePayload{Name: "Main"}}

	out, err := NormalizeSingle(in)
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, out.Version)
	assert.NotNil(t, out.Data.Apps)
	assert.Empty(t, out.Data.Apps)
}
