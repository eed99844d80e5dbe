package guildbuild

import (
	"testing"

	"github.com/neko-jpg/schoolfestival-bot/internal/entity"
	"github.com/stretchr/testify/require"
)

func Test_decodeRecord(t *testing.T) {
	snapshot := newSnapshot()
	template := newTemplate()
	template.Categories[0].Channels[0].Topic = strPtr("new")
	diff := Diff(snapshot, template)

	s, d, err := encodeRecord(snapshot, diff)
	require.NoError(t, err)

	gotSnapshot, gotDiff, err := decodeRecord(&entity.BuildRun{
		SchemaVersion: recordSchemaVersion,
		Snapshot:      s,
		DryRunResult:  d,
	})
	require.NoError(t, err)
	require.Equal(t, snapshot, gotSnapshot)
	require.Equal(t, "new", *gotDiff.Channels.ToUpdate[0].Changes.Topic)
	require.Equal(t, "21", gotDiff.Channels.ToUpdate[0].Existing.ID)
}

func Test_decodeRecord_UnsupportedVersion(t *testing.T) {
	_, _, err := decodeRecord(&entity.BuildRun{SchemaVersion: 99, Snapshot: "{}", DryRunResult: "{}"})
	require.EqualError(t, err, "unsupported build run schema version 99")

	_, _, err = decodeRecord(&entity.BuildRun{SchemaVersion: recordSchemaVersion, Snapshot: "{", DryRunResult: "{}"})
	require.Error(t, err)
}
