package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deploystrat/internal/addr"
	"deploystrat/internal/plan"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := New(Config{RepoPath: dir}, nil)
	require.NoError(t, s.InitState(context.Background()))
	return s, dir
}

func samplePlan(t *testing.T) *plan.Plan {
	t.Helper()
	a := addr.MustParse("root", "//root:step")
	return &plan.Plan{
		Actions: []plan.Action{
			{
				Type:           plan.ActionRun,
				Address:        a,
				State:          plan.StateDone,
				Snapshot:       map[string]any{"before": "x"},
				ResolvedInputs: map[string]any{"artifact": "v1"},
				Result:         map[string]any{"ran": true},
			},
		},
	}
}

func TestInitState_CreatesRevisionsDir(t *testing.T) {
	_, dir := newTestStore(t)
	info, err := os.Stat(filepath.Join(dir, "revisions"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveThenLoadRevision_RoundTrips(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := samplePlan(t)

	require.NoError(t, s.SaveRevision(ctx, "rev1", p))

	loaded, err := s.LoadRevision(ctx, "root", "rev1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Actions, 1)

	got := loaded.Actions[0]
	assert.Equal(t, plan.ActionRun, got.Type)
	assert.Equal(t, plan.StateDone, got.State)
	assert.Equal(t, "//root:step", got.Address.String())
	assert.Equal(t, map[string]any{"before": "x"}, got.Snapshot)
	assert.Equal(t, map[string]any{"ran": true}, got.Result)
}

func TestLoadRevision_MissingReturnsNil(t *testing.T) {
	s, _ := newTestStore(t)
	loaded, err := s.LoadRevision(context.Background(), "root", "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveRevision_IsIdempotentByteForByte(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := samplePlan(t)

	require.NoError(t, s.SaveRevision(ctx, "rev1", p))
	first, err := os.ReadFile(filepath.Join(s.revisionDir("rev1"), "state.json"))
	require.NoError(t, err)

	require.NoError(t, s.SaveRevision(ctx, "rev1", p))
	second, err := os.ReadFile(filepath.Join(s.revisionDir("rev1"), "state.json"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
