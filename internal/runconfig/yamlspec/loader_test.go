package yamlspec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deploystrat/internal/addr"
	"deploystrat/internal/loader"
	"deploystrat/internal/planner"
	"deploystrat/internal/specs"
	"deploystrat/internal/strategy"
)

func writeDeployFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "DEPLOY.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ProducesRegistrationsForEachKind(t *testing.T) {
	path := writeDeployFile(t, `
artifacts:
  - name: build-output
    available: true
    value: sha256:abc

steps:
  - name: deploy
    deps:
      artifact: ":build-output"
    run: ["echo", "deploy"]

checks:
  - name: healthy
    after: [":deploy"]
    deps:
      artifact: ":build-output"
`)

	regs, err := Load("root", path)
	require.NoError(t, err)
	require.Len(t, regs, 3)

	assert.Equal(t, specs.KindArtifact, regs[0].Kind)
	assert.Equal(t, specs.KindStep, regs[1].Kind)
	assert.Equal(t, specs.KindCheck, regs[2].Kind)
}

func TestLoad_RegistrationsPlanSuccessfully(t *testing.T) {
	path := writeDeployFile(t, `
artifacts:
  - name: build-output
    available: true
    value: sha256:abc

steps:
  - name: deploy
    deps:
      artifact: ":build-output"
    run: ["echo", "deploy"]
`)

	regs, err := Load("root", path)
	require.NoError(t, err)

	strat := strategy.New()
	require.NoError(t, loader.Apply(strat, regs))

	available := []addr.Address{addr.MustParse("root", "//root:build-output")}
	p, err := planner.Plan(strat, available)
	require.NoError(t, err)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, "//root:deploy", p.Actions[0].Address.String())
}
