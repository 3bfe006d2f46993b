package database

import (
	"context"
	"testing"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/config"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTestStore(t *testing.T) *RunStore {
	t.Helper()
	db, err := ConnectSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewRunStore(db)
}

func TestRunStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run := &models.RunRecord{ID: "run-1", Owner: "anonymous", Brief: datatypes.JSON(`{"emotion":{}}`)}
	require.NoError(t, store.Create(ctx, run))
	assert.Equal(t, models.RunStatusRunning, run.Status)

	require.NoError(t, store.AppendRounds(ctx, []models.ReviewRoundRecord{
		{RunID: "run-1", Loop: "script", Round: 1, Passed: true, Summary: "faithful"},
		{RunID: "run-1", Loop: "director", Round: 2, Passed: true, Summary: "good"},
		{RunID: "run-1", Loop: "director", Round: 1, Passed: false, Summary: "too fast",
			RequiredChanges: datatypes.JSON(`[{"target":"visual","instruction":"slower"}]`)},
	}))
	require.NoError(t, store.AppendRounds(ctx, nil))

	require.NoError(t, store.Finish(ctx, "run-1", models.RunUpdate{
		Status:     models.RunStatusPassed,
		Result:     datatypes.JSON(`{"passed":true}`),
		DurationMs: 1234,
	}))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusPassed, got.Status)
	assert.Equal(t, int64(1234), got.DurationMs)
	require.NotNil(t, got.CompletedAt)
	assert.JSONEq(t, `{"passed":true}`, string(got.Result))

	require.Len(t, got.Rounds, 3)
	assert.Equal(t, "director", got.Rounds[0].Loop)
	assert.Equal(t, 1, got.Rounds[0].Round)
	assert.Equal(t, 2, got.Rounds[1].Round)
	assert.Equal(t, "script", got.Rounds[2].Loop)
}

func TestRunStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = store.Finish(ctx, "missing", models.RunUpdate{Status: models.RunStatusFailed})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunStore_ListRecent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i, owner := range []string{"alice", "bob", "alice"} {
		require.NoError(t, store.Create(ctx, &models.RunRecord{
			ID:        []string{"a", "b", "c"}[i],
			Owner:     owner,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Result:    datatypes.JSON(`{"big":"body"}`),
		}))
	}

	tests := []struct {
		name  string
		owner string
		limit int
		want  []string
	}{
		{"all owners newest first", "", 10, []string{"c", "b", "a"}},
		{"one owner", "alice", 10, []string{"c", "a"}},
		{"limit", "", 1, []string{"c"}},
		{"limit out of range uses the maximum", "", 0, []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := store.ListRecent(ctx, tt.owner, tt.limit)
			require.NoError(t, err)
			ids := make([]string, len(runs))
			for i, r := range runs {
				ids[i] = r.ID
				assert.Empty(t, r.Result)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRunStore_Ping(t *testing.T) {
	assert.NoError(t, newTestStore(t).Ping(context.Background()))
}

func TestConnect(t *testing.T) {
	t.Run("sqlite file", func(t *testing.T) {
		path := t.TempDir() + "/nested/runs.db"
		db, err := Connect(&config.Config{DatabaseType: "sqlite", SQLitePath: path})
		require.NoError(t, err)
		require.NoError(t, Migrate(db))
		assert.FileExists(t, path)
	})

	t.Run("postgres needs a url", func(t *testing.T) {
		_, err := Connect(&config.Config{DatabaseType: "postgres"})
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := Connect(&config.Config{DatabaseType: "mongo"})
		assert.Error(t, err)
	})
}
