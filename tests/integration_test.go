// Package tests exercises the full loader -> strategy -> planner ->
// executor -> store pipeline end to end, the way the teacher's own
// package-level tests/ directory covered cross-plugin integration rather
// than a single unit.
package tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deploystrat/internal/addr"
	"deploystrat/internal/exec"
	"deploystrat/internal/loader"
	"deploystrat/internal/plan"
	"deploystrat/internal/planner"
	"deploystrat/internal/runconfig/yamlspec"
	"deploystrat/internal/store"
	"deploystrat/internal/strategy"
)

func writeDeployFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "DEPLOY.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func buildStrategy(t *testing.T, base, path string) *strategy.Strategy {
	t.Helper()
	regs, err := yamlspec.Load(base, path)
	require.NoError(t, err)

	strat := strategy.New()
	require.NoError(t, loader.Apply(strat, regs))
	return strat
}

func availableArtifacts(ctx context.Context, strat *strategy.Strategy) []addr.Address {
	var out []addr.Address
	for a, artifact := range strat.Artifacts() {
		exists, _ := artifact.Exists(ctx)
		if exists {
			out = append(out, a)
		}
	}
	return out
}

func TestSingleRun_EndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path := writeDeployFile(t, dir, `
artifacts:
  - name: artifact
    available: true
    value: sha256:deadbeef

steps:
  - name: step
    deps:
      artifact: ":artifact"
    run: ["echo", "deploy"]
`)

	strat := buildStrategy(t, "root", path)

	p, err := planner.Plan(strat, availableArtifacts(ctx, strat))
	require.NoError(t, err)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, plan.ActionRun, p.Actions[0].Type)

	stateDir := t.TempDir()
	st := store.New(store.Config{RepoPath: stateDir}, nil)
	require.NoError(t, st.InitState(ctx))
	require.NoError(t, st.InitRevision(ctx, "rev1"))

	executor, err := exec.New(ctx, strat, p)
	require.NoError(t, err)

	var snapshots []*plan.Plan
	require.NoError(t, executor.Run(ctx, func(next *plan.Plan) error {
		snapshots = append(snapshots, next)
		return st.SaveRevision(ctx, "rev1", next)
	}))

	require.Len(t, snapshots, 2)
	assert.Equal(t, plan.StateInProgress, snapshots[0].Actions[0].State)
	assert.Equal(t, plan.StateDone, snapshots[1].Actions[0].State)

	loaded, err := st.LoadRevision(ctx, "root", "rev1")
	require.NoError(t, err)
	require.Len(t, loaded.Actions, 1)
	assert.Equal(t, plan.StateDone, loaded.Actions[0].State)
}

func TestFailedCheckCascade_EndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path := writeDeployFile(t, dir, `
artifacts:
  - name: artifact
    available: true

steps:
  - name: deploy
    deps:
      artifact: ":artifact"
    run: ["echo", "deploy"]

  - name: notify
    after: [":healthy"]
    run: ["echo", "notify"]

checks:
  - name: healthy
    after: [":deploy"]
    deps:
      artifact: ":artifact"
`)

	strat := buildStrategy(t, "root", path)

	p, err := planner.Plan(strat, availableArtifacts(ctx, strat))
	require.NoError(t, err)

	stateDir := t.TempDir()
	st := store.New(store.Config{RepoPath: stateDir}, nil)
	require.NoError(t, st.InitState(ctx))
	require.NoError(t, st.InitRevision(ctx, "rev2"))

	executor, err := exec.New(ctx, strat, p)
	require.NoError(t, err)

	var final *plan.Plan
	require.NoError(t, executor.Run(ctx, func(next *plan.Plan) error {
		final = next
		return st.SaveRevision(ctx, "rev2", next)
	}))

	byAddress := make(map[string]plan.Action)
	for _, a := range final.Actions {
		byAddress[a.Address.String()] = a
	}

	assert.Equal(t, plan.StateDone, byAddress["//root:deploy"].State)
	assert.Equal(t, plan.StateDone, byAddress["//root:healthy"].State)
	assert.Equal(t, plan.StateCancelled, byAddress["//root:notify"].State)

	var rollbacks int
	for _, a := range final.Actions {
		if a.Type == plan.ActionRollback {
			rollbacks++
			assert.Equal(t, "//root:deploy", a.Address.String())
			assert.Equal(t, plan.StateDone, a.State)
		}
	}
	assert.Equal(t, 1, rollbacks)
}
