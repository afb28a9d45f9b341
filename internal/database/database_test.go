package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "warden.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRecordAction(t *testing.T) {
	d := openTestDB(t)
	d.now = func() time.Time { return time.Unix(1700000000, 0) }

	a := &ModerationAction{
		GuildID:  "g1",
		Kind:     KindArchive,
		ActorID:  "admin",
		TargetID: "chan-1",
		Outcome:  "moved",
		Detail:   "Archive 2",
	}
	require.NoError(t, d.RecordAction(a))

	assert.NotZero(t, a.ID)
	assert.Equal(t, int64(1700000000), a.CreatedAt)

	got, err := d.RecentActions("g1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a, got[0])
}

func TestRecentActions_OrderAndLimit(t *testing.T) {
	d := openTestDB(t)

	for i, outcome := range []string{"declined", "timed_out", "moved"} {
		require.NoError(t, d.RecordAction(&ModerationAction{
			GuildID:   "g1",
			Kind:      KindArchive,
			ActorID:   "admin",
			Outcome:   outcome,
			CreatedAt: int64(100 + i),
		}))
	}
	require.NoError(t, d.RecordAction(&ModerationAction{GuildID: "other", Kind: KindSanction, ActorID: "x", Outcome: "applied", CreatedAt: 500}))

	got, err := d.RecentActions("g1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "moved", got[0].Outcome)
	assert.Equal(t, "timed_out", got[1].Outcome)
}

func TestActionsForTargetAndCounts(t *testing.T) {
	d := openTestDB(t)

	records := []ModerationAction{
		{GuildID: "g1", Kind: KindSanction, ActorID: "mod", TargetID: "u1", Outcome: "applied"},
		{GuildID: "g1", Kind: KindSanction, ActorID: "mod", TargetID: "u1", Outcome: "invalid_duration"},
		{GuildID: "g1", Kind: KindSanction, ActorID: "mod", TargetID: "u2", Outcome: "applied"},
	}
	for i := range records {
		require.NoError(t, d.RecordAction(&records[i]))
	}

	forU1, err := d.ActionsForTarget("g1", "u1")
	require.NoError(t, err)
	assert.Len(t, forU1, 2)

	counts, err := d.CountByOutcome("g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"applied": 2, "invalid_duration": 1}, counts)
}

func TestInitializeGlobal(t *testing.T) {
	require.NoError(t, Initialize(filepath.Join(t.TempDir(), "global.db")))
	t.Cleanup(func() {
		Close()
		globalDB = nil
	})

	assert.True(t, IsConnected())
	assert.NotNil(t, GetDB())
}
