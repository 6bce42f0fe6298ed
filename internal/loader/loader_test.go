package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deploystrat/internal/addr"
	"deploystrat/internal/specs"
	"deploystrat/internal/strategy"
	"deploystrat/internal/testspecs"
)

func TestApply_RegistersEachKind(t *testing.T) {
	strat := strategy.New()
	regs := []Registration{
		{Base: "r", Kind: specs.KindArtifact, Spec: &testspecs.Artifact{Base: specs.Base{Name: "art"}, Available: true}},
		{Base: "r", Kind: specs.KindResource, Spec: &testspecs.Resource{Base: specs.Base{Name: "res"}}},
		{Base: "r", Kind: specs.KindStep, Spec: &testspecs.Step{Base: specs.Base{Name: "step"}}},
		{Base: "r", Kind: specs.KindCheck, Spec: &testspecs.Check{Base: specs.Base{Name: "check"}, Pass: true}},
	}

	require.NoError(t, Apply(strat, regs))

	kind, ok := strat.Kind(addr.MustParse("r", "//r:art"))
	require.True(t, ok)
	assert.Equal(t, specs.KindArtifact, kind)

	kind, ok = strat.Kind(addr.MustParse("r", "//r:check"))
	require.True(t, ok)
	assert.Equal(t, specs.KindCheck, kind)
}

func TestApply_KindMismatch_Errors(t *testing.T) {
	strat := strategy.New()
	regs := []Registration{
		{Base: "r", Kind: specs.KindStep, Spec: &testspecs.Artifact{Base: specs.Base{Name: "not-a-step"}}},
	}
	err := Apply(strat, regs)
	assert.Error(t, err)
}
