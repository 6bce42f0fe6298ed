package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deploystrat/internal/addr"
	"deploystrat/internal/deployerrors"
	"deploystrat/internal/plan"
	"deploystrat/internal/specs"
	"deploystrat/internal/strategy"
	"deploystrat/internal/testspecs"
)

func stepAddresses(p *plan.Plan) []string {
	out := make([]string, len(p.Actions))
	for i, a := range p.Actions {
		out[i] = a.Address.String()
	}
	return out
}

func TestPlan_EmptyStrategy(t *testing.T) {
	strat := strategy.New()
	p, err := Plan(strat, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Actions)
}

func TestPlan_SingleRun(t *testing.T) {
	strat := strategy.New()
	art := &testspecs.Artifact{Base: specs.Base{Name: "artifact"}, Available: true}
	require.NoError(t, strat.RegisterArtifact("root", art))

	step := &testspecs.Step{
		Base: specs.Base{Name: "step"},
		Deps: map[string]specs.Shape{"artifact": specs.AddrRef(":artifact")},
	}
	require.NoError(t, strat.RegisterStep("root", step))

	available := []addr.Address{addr.MustParse("root", "//root:artifact")}
	p, err := Plan(strat, available)
	require.NoError(t, err)

	require.Len(t, p.Actions, 1)
	assert.Equal(t, plan.ActionRun, p.Actions[0].Type)
	assert.Equal(t, plan.StatePlanned, p.Actions[0].State)
	assert.Equal(t, "//root:step", p.Actions[0].Address.String())
}

func TestPlan_DiamondOrdering(t *testing.T) {
	strat := strategy.New()
	require.NoError(t, strat.RegisterArtifact("r", &testspecs.Artifact{Base: specs.Base{Name: "artifact"}, Available: true}))

	foo := &testspecs.Step{
		Base: specs.Base{Name: "step-foo"},
		Deps: map[string]specs.Shape{"artifact": specs.AddrRef(":artifact")},
	}
	bar := &testspecs.Step{
		Base: specs.Base{Name: "step-bar"},
		Deps: map[string]specs.Shape{"artifact": specs.AddrRef(":artifact")},
	}
	require.NoError(t, strat.RegisterStep("r", foo))
	require.NoError(t, strat.RegisterStep("r", bar))

	check := &testspecs.Check{
		Base: specs.Base{Name: "check", AfterAddrs: []string{":step-bar"}},
		Deps: map[string]specs.Shape{"resource": specs.AddrRef(":step-foo")},
		Pass: true,
	}
	require.NoError(t, strat.RegisterCheck("r", check))

	available := []addr.Address{addr.MustParse("r", "//r:artifact")}
	p, err := Plan(strat, available)
	require.NoError(t, err)

	assert.Equal(t, []string{"//r:step-bar", "//r:step-foo", "//r:check"}, stepAddresses(p))
}

func TestPlan_TransitiveChain(t *testing.T) {
	strat := strategy.New()
	one := &testspecs.Step{Base: specs.Base{Name: "step-one"}}
	two := &testspecs.Step{Base: specs.Base{Name: "step-two", AfterAddrs: []string{":step-one"}}}
	three := &testspecs.Step{Base: specs.Base{Name: "step-three", AfterAddrs: []string{":step-two"}}}
	require.NoError(t, strat.RegisterStep("r", one))
	require.NoError(t, strat.RegisterStep("r", two))
	require.NoError(t, strat.RegisterStep("r", three))

	p, err := Plan(strat, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"//r:step-one", "//r:step-two", "//r:step-three"}, stepAddresses(p))
}

func TestPlan_UnknownAddress(t *testing.T) {
	strat := strategy.New()
	step := &testspecs.Step{
		Base: specs.Base{Name: "x"},
		Deps: map[string]specs.Shape{"artifact": specs.AddrRef("//r:missing")},
	}
	require.NoError(t, strat.RegisterStep("r", step))

	_, err := Plan(strat, nil)
	var unknown *deployerrors.UnknownAddressesError
	require.ErrorAs(t, err, &unknown)
	require.Len(t, unknown.Addresses, 1)
	assert.Equal(t, "//r:missing", unknown.Addresses[0].String())
}

func TestPlan_UnavailableArtifact_SkipsDependents(t *testing.T) {
	strat := strategy.New()
	require.NoError(t, strat.RegisterArtifact("r", &testspecs.Artifact{Base: specs.Base{Name: "artifact"}, Available: false}))

	step := &testspecs.Step{
		Base: specs.Base{Name: "step"},
		Deps: map[string]specs.Shape{"artifact": specs.AddrRef(":artifact")},
	}
	require.NoError(t, strat.RegisterStep("r", step))

	p, err := Plan(strat, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Actions)
}
