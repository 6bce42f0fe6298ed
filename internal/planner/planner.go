// Package planner turns a strategy graph plus a set of available artifacts
// into an ordered Plan of PLANNED actions, generalizing the teacher's
// internal/plugin/dependency_graph.go topological walk with the
// artifact-availability skip pass spec.md's design notes call for.
package planner

import (
	"sort"

	"github.com/google/uuid"

	"deploystrat/internal/addr"
	"deploystrat/internal/deployerrors"
	"deploystrat/internal/plan"
	"deploystrat/internal/resolve"
	"deploystrat/internal/specs"
	"deploystrat/internal/strategy"
)

// placeholder is an opaque token that satisfies the resolver during planning
// without carrying a real value. Each call to Plan mints fresh placeholders
// (via uuid) so two planning passes never compare equal by accident.
type placeholder struct {
	token string
}

func newPlaceholder() any { return placeholder{token: uuid.NewString()} }

// Plan produces an ordered sequence of PLANNED actions for every step and
// check in strat whose dependencies are satisfiable given the set of
// artifact addresses known to exist for the current revision.
func Plan(strat *strategy.Strategy, availableArtifacts []addr.Address) (*plan.Plan, error) {
	results := make(map[addr.Address]any)
	available := make(map[addr.Address]bool, len(availableArtifacts))
	for _, a := range availableArtifacts {
		id := a.Identity()
		available[id] = true
		results[id] = newPlaceholder()
	}
	for a := range strat.Resources() {
		results[a] = newPlaceholder()
	}

	skip := computeSkips(strat, available)

	pending := make(map[addr.Address]bool)
	for _, a := range strat.SortedStepAndCheckAddresses() {
		if !skip[a] {
			pending[a] = true
		}
	}

	var actions []plan.Action
	for len(pending) > 0 {
		progressed := false

		order := make([]addr.Address, 0, len(pending))
		for a := range pending {
			order = append(order, a)
		}
		sort.Slice(order, func(i, j int) bool { return order[i].String() < order[j].String() })

		for _, a := range order {
			if !dependenciesSatisfied(strat, a, results) {
				continue
			}

			kind, _ := strat.Kind(a)
			actions = append(actions, plan.Action{
				Type:    actionTypeFor(kind),
				Address: a,
				State:   plan.StatePlanned,
			})
			results[a] = newPlaceholder()
			delete(pending, a)
			progressed = true
		}

		if !progressed {
			remaining := make([]addr.Address, 0, len(pending))
			for a := range pending {
				remaining = append(remaining, a)
			}
			sort.Slice(remaining, func(i, j int) bool { return remaining[i].String() < remaining[j].String() })
			return nil, deployerrors.NewUnknownAddressesError(unresolvedLeaves(strat, remaining, results))
		}
	}

	return &plan.Plan{Actions: actions}, nil
}

func actionTypeFor(kind specs.Kind) plan.ActionType {
	if kind == specs.KindCheck {
		return plan.ActionCheck
	}
	return plan.ActionRun
}

func dependenciesSatisfied(strat *strategy.Strategy, a addr.Address, results map[addr.Address]any) bool {
	for _, after := range strat.After(a) {
		if _, ok := results[after]; !ok {
			return false
		}
	}
	deps := strat.Dependencies(a)
	if deps == nil {
		return true
	}
	if _, err := resolve.ResolveAll(deps, results); err != nil {
		return false
	}
	return true
}

// computeSkips finds every step/check whose dependency graph transitively
// reaches an unavailable artifact, per spec.md §9's explicit reachability
// pass (Open Question (b)): rather than discover skips implicitly as the
// fixed-point loop fails to make progress, compute them up front so the
// fixed-point loop only ever deals with genuinely unknown addresses.
func computeSkips(strat *strategy.Strategy, available map[addr.Address]bool) map[addr.Address]bool {
	unavailable := make(map[addr.Address]bool)
	for a := range strat.Artifacts() {
		if !available[a] {
			unavailable[a] = true
		}
	}

	skip := make(map[addr.Address]bool)
	memo := make(map[addr.Address]bool)

	var reachesUnavailable func(a addr.Address, visiting map[addr.Address]bool) bool
	reachesUnavailable = func(a addr.Address, visiting map[addr.Address]bool) bool {
		if unavailable[a] {
			return true
		}
		if v, ok := memo[a]; ok {
			return v
		}
		if visiting[a] {
			return false
		}
		visiting[a] = true
		defer delete(visiting, a)

		result := false
		for _, dep := range leafAddresses(strat.Dependencies(a)) {
			if reachesUnavailable(dep, visiting) {
				result = true
				break
			}
		}
		if !result {
			for _, after := range strat.After(a) {
				if reachesUnavailable(after, visiting) {
					result = true
					break
				}
			}
		}
		memo[a] = result
		return result
	}

	for _, a := range strat.SortedStepAndCheckAddresses() {
		if reachesUnavailable(a, make(map[addr.Address]bool)) {
			skip[a] = true
		}
	}
	return skip
}

func leafAddresses(shape map[string]specs.Shape) []addr.Address {
	var out []addr.Address
	var walk func(s specs.Shape)
	walk = func(s specs.Shape) {
		switch s.Kind {
		case specs.ShapeAddr:
			if s.Addr != nil {
				out = append(out, s.Addr.Identity())
			}
		case specs.ShapeSeq, specs.ShapeSet:
			for _, item := range s.Items {
				walk(item)
			}
		case specs.ShapeMap:
			for _, v := range s.Entries {
				walk(v)
			}
		case specs.ShapeRecord:
			for _, v := range s.Fields {
				walk(v)
			}
		}
	}
	for _, s := range shape {
		walk(s)
	}
	return out
}

// unresolvedLeaves reports, for the stalled nodes remaining in pending, the
// distinct dependency addresses that never appeared in results — the
// diagnostic payload for UnknownAddresses.
func unresolvedLeaves(strat *strategy.Strategy, stalled []addr.Address, results map[addr.Address]any) []addr.Address {
	seen := make(map[addr.Address]bool)
	var out []addr.Address
	for _, a := range stalled {
		for _, dep := range leafAddresses(strat.Dependencies(a)) {
			if _, ok := results[dep]; !ok && !seen[dep] {
				seen[dep] = true
				out = append(out, dep)
			}
		}
		for _, after := range strat.After(a) {
			if _, ok := results[after]; !ok && !seen[after] {
				seen[after] = true
				out = append(out, after)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
