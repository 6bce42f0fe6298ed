// Package loader defines the registration API a deploy-file loader target
// against, per spec.md §9's design note: the target exposes an object
// passed to plugin/deploy-file initializers rather than evaluating source
// files the way the original's register.py modules did.
package loader

import (
	"fmt"

	"deploystrat/internal/specs"
	"deploystrat/internal/strategy"
)

// Registration is one (base, kind, spec) triple produced by a deploy-file
// loader, ready to be applied to a Strategy.
type Registration struct {
	Base string
	Kind specs.Kind
	Spec specs.Spec
}

// Apply registers every entry against strat in order, type-asserting each
// Spec to the behavior interface its declared Kind requires.
func Apply(strat *strategy.Strategy, registrations []Registration) error {
	for _, reg := range registrations {
		if err := applyOne(strat, reg); err != nil {
			return fmt.Errorf("register %s (%s): %w", reg.Spec.SpecName(), reg.Kind, err)
		}
	}
	return nil
}

func applyOne(strat *strategy.Strategy, reg Registration) error {
	switch reg.Kind {
	case specs.KindArtifact:
		art, ok := reg.Spec.(specs.Artifact)
		if !ok {
			return fmt.Errorf("spec does not implement Artifact")
		}
		return strat.RegisterArtifact(reg.Base, art)

	case specs.KindResource:
		res, ok := reg.Spec.(specs.Resource)
		if !ok {
			return fmt.Errorf("spec does not implement Resource")
		}
		return strat.RegisterResource(reg.Base, res)

	case specs.KindStep:
		step, ok := reg.Spec.(specs.Step)
		if !ok {
			return fmt.Errorf("spec does not implement Step")
		}
		return strat.RegisterStep(reg.Base, step)

	case specs.KindCheck:
		check, ok := reg.Spec.(specs.Check)
		if !ok {
			return fmt.Errorf("spec does not implement Check")
		}
		return strat.RegisterCheck(reg.Base, check)

	default:
		return fmt.Errorf("unknown kind %v", reg.Kind)
	}
}
