package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scafferrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/internal/models"
	"github.com/toyz/scaffold/internal/typeref"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSnapshot(t *testing.T) {
	path := writeSnapshot(t, `{
		"source_path": "src/main",
		"types": [
			{
				"type": "example.com/app.Pet",
				"fields": [
					{"name": "id", "type": "int", "modifiers": ["private"],
					 "annotations": [{"directive": "scaffold::id"}]}
				],
				"methods": [
					{"name": "rename", "params": [{"name": "name", "type": "string"}],
					 "modifiers": ["public"]}
				]
			}
		]
	}`)

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "src/main", snap.SourcePath)
	require.Len(t, snap.Types, 1)

	gen, err := snap.BuildGeneration()
	require.NoError(t, err)
	require.Equal(t, 1, gen.Len())

	ts := gen.Structures()[0]
	assert.Equal(t, "MID:scaffold.synth#src/main?example.com/app.Pet", ts.Identity())

	id := ts.FieldNamed("id")
	require.NotNil(t, id)
	assert.True(t, id.Modifiers.Has(models.ModPrivate))
	assert.NotNil(t, models.AnnotationNamed(id.Annotations, models.DirectiveID))

	rename := ts.MethodNamed("rename", []typeref.TypeRef{typeref.String})
	require.NotNil(t, rename)
	assert.True(t, rename.Modifiers.Has(models.ModPublic))
}

func TestLoadSnapshotAugmentedVariant(t *testing.T) {
	path := writeSnapshot(t, `{
		"source_path": "src/main",
		"types": [
			{"type": "example.com/app.Pet",
			 "variant": "augmented",
			 "augmentation_source": "example.com/gen.PetSupport"}
		]
	}`)

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	gen, err := snap.BuildGeneration()
	require.NoError(t, err)

	ts := gen.Structures()[0]
	assert.Equal(t, models.VariantAugmented, ts.Variant())
}

func TestLoadSnapshotErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.SnapshotErrorCode))
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := LoadSnapshot(writeSnapshot(t, "{not json"))
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.SnapshotErrorCode))
	})

	t.Run("missing source path", func(t *testing.T) {
		_, err := LoadSnapshot(writeSnapshot(t, `{"types": [{"type": "a.B"}]}`))
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.SnapshotErrorCode))
	})

	t.Run("no types", func(t *testing.T) {
		_, err := LoadSnapshot(writeSnapshot(t, `{"source_path": "src"}`))
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.SnapshotErrorCode))
	})
}

func TestBuildGenerationErrors(t *testing.T) {
	t.Run("bad type expression", func(t *testing.T) {
		snap, err := LoadSnapshot(writeSnapshot(t, `{
			"source_path": "src",
			"types": [{"type": "???"}]
		}`))
		require.NoError(t, err)
		_, err = snap.BuildGeneration()
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.SnapshotErrorCode))
	})

	t.Run("unknown modifier", func(t *testing.T) {
		snap, err := LoadSnapshot(writeSnapshot(t, `{
			"source_path": "src",
			"types": [{"type": "example.com/app.Pet", "modifiers": ["sideways"]}]
		}`))
		require.NoError(t, err)
		_, err = snap.BuildGeneration()
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.SnapshotErrorCode))
	})

	t.Run("unknown variant", func(t *testing.T) {
		snap, err := LoadSnapshot(writeSnapshot(t, `{
			"source_path": "src",
			"types": [{"type": "example.com/app.Pet", "variant": "imaginary"}]
		}`))
		require.NoError(t, err)
		_, err = snap.BuildGeneration()
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.SnapshotErrorCode))
	})

	t.Run("augmented without source", func(t *testing.T) {
		snap, err := LoadSnapshot(writeSnapshot(t, `{
			"source_path": "src",
			"types": [{"type": "example.com/app.Pet", "variant": "augmented"}]
		}`))
		require.NoError(t, err)
		_, err = snap.BuildGeneration()
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.SnapshotErrorCode))
	})
}
