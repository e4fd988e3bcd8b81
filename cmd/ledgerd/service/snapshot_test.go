package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotExportsFullLedger(t *testing.T) {
	store, idA, idB := setupFixture(t)
	svc := NewSnapshotService(store, testLogger())

	payload, err := svc.Export(context.Background())
	require.NoError(t, err)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(payload, &snapshot))

	assert.False(t, snapshot.ExportedAt.IsZero())
	assert.Equal(t, 2, snapshot.Count)
	require.Len(t, snapshot.Artifacts, 2)

	byID := make(map[string]int)
	for i, artifact := range snapshot.Artifacts {
		byID[artifact.ID] = i
	}
	require.Contains(t, byID, idA)
	require.Contains(t, byID, idB)

	// Remix history survives the round trip verbatim.
	origin := snapshot.Artifacts[byID[idA]]
	require.Len(t, origin.RemixHistory, 1)
	assert.Equal(t, idB, origin.RemixHistory[0].NewArtifactID)

	remix := snapshot.Artifacts[byID[idB]]
	assert.True(t, remix.Crowned)
}

func TestSnapshotEmptyLedger(t *testing.T) {
	svc := NewSnapshotService(repository.NewMemoryStore(), testLogger())

	payload, err := svc.Export(context.Background())
	require.NoError(t, err)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(payload, &snapshot))
	assert.Equal(t, 0, snapshot.Count)
	assert.NotNil(t, snapshot.Artifacts)
	assert.Empty(t, snapshot.Artifacts)
}
