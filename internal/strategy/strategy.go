// Package strategy builds the deployment graph from registrations,
// extracting dependency edges from each spec's declared Shape the way the
// teacher's internal/plugin/dependency_graph.go tracks plugin
// relationships, generalized from plugin names to spec addresses.
package strategy

import (
	"fmt"
	"sort"

	"deploystrat/internal/addr"
	"deploystrat/internal/specs"
)

// Strategy holds every registered spec node and the dependency edges
// extracted from their declared shapes. It is read-only once construction
// (registration) completes; the planner and executor never mutate it.
type Strategy struct {
	artifacts map[addr.Address]specs.Artifact
	resources map[addr.Address]specs.Resource
	steps     map[addr.Address]specs.Step
	checks    map[addr.Address]specs.Check

	deps  map[addr.Address]map[string]specs.Shape
	after map[addr.Address][]addr.Address
}

// New returns an empty strategy ready to accept registrations.
func New() *Strategy {
	return &Strategy{
		artifacts: make(map[addr.Address]specs.Artifact),
		resources: make(map[addr.Address]specs.Resource),
		steps:     make(map[addr.Address]specs.Step),
		checks:    make(map[addr.Address]specs.Check),
		deps:      make(map[addr.Address]map[string]specs.Shape),
		after:     make(map[addr.Address][]addr.Address),
	}
}

func addressFor(base string, spec specs.Spec) (addr.Address, error) {
	return addr.New(base, spec.SpecName())
}

// resolveShape walks a declared Shape, turning every AddrRef literal into a
// concrete Address resolved against base. This is the edge-extraction
// decision point referenced by spec.md §4.2: it never requires the target
// address to already be registered (registration order is arbitrary), only
// that it parses.
func resolveShape(base string, s specs.Shape) (specs.Shape, error) {
	switch s.Kind {
	case specs.ShapeAddr:
		if s.Addr != nil {
			return s, nil
		}
		a, err := addr.Parse(base, s.AddrLiteral)
		if err != nil {
			return specs.Shape{}, err
		}
		return specs.ResolvedAddr(a), nil

	case specs.ShapeSeq:
		items, err := resolveShapeItems(base, s.Items)
		if err != nil {
			return specs.Shape{}, err
		}
		return specs.Seq(items...), nil

	case specs.ShapeSet:
		items, err := resolveShapeItems(base, s.Items)
		if err != nil {
			return specs.Shape{}, err
		}
		return specs.Set(items...), nil

	case specs.ShapeMap:
		entries := make(map[string]specs.Shape, len(s.Entries))
		for k, v := range s.Entries {
			resolved, err := resolveShape(base, v)
			if err != nil {
				return specs.Shape{}, err
			}
			entries[k] = resolved
		}
		return specs.MapOf(entries), nil

	case specs.ShapeRecord:
		fields := make(map[string]specs.Shape, len(s.Fields))
		for k, v := range s.Fields {
			resolved, err := resolveShape(base, v)
			if err != nil {
				return specs.Shape{}, err
			}
			fields[k] = resolved
		}
		return specs.Record(fields), nil

	case specs.ShapeInline:
		return s, nil

	default:
		return specs.Shape{}, fmt.Errorf("unknown shape kind %d", s.Kind)
	}
}

func resolveShapeItems(base string, items []specs.Shape) ([]specs.Shape, error) {
	out := make([]specs.Shape, len(items))
	for i, item := range items {
		resolved, err := resolveShape(base, item)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func (s *Strategy) index(a addr.Address, spec specs.Spec) error {
	deps := make(map[string]specs.Shape, len(spec.Dependencies()))
	for name, shape := range spec.Dependencies() {
		resolved, err := resolveShape(a.Base, shape)
		if err != nil {
			return err
		}
		deps[name] = resolved
	}
	s.deps[a] = deps

	afterAddrs := make([]addr.Address, 0, len(spec.After()))
	for _, literal := range spec.After() {
		parsed, err := addr.Parse(a.Base, literal)
		if err != nil {
			return err
		}
		afterAddrs = append(afterAddrs, parsed.Identity())
	}
	s.after[a] = afterAddrs

	return nil
}

// RegisterArtifact adds an artifact spec declared in base.
func (s *Strategy) RegisterArtifact(base string, spec specs.Artifact) error {
	a, err := addressFor(base, spec)
	if err != nil {
		return err
	}
	if err := s.checkUnique(a); err != nil {
		return err
	}
	s.artifacts[a] = spec
	return s.index(a, spec)
}

// RegisterResource adds a resource spec declared in base.
func (s *Strategy) RegisterResource(base string, spec specs.Resource) error {
	a, err := addressFor(base, spec)
	if err != nil {
		return err
	}
	if err := s.checkUnique(a); err != nil {
		return err
	}
	s.resources[a] = spec
	return s.index(a, spec)
}

// RegisterStep adds a step spec declared in base.
func (s *Strategy) RegisterStep(base string, spec specs.Step) error {
	a, err := addressFor(base, spec)
	if err != nil {
		return err
	}
	if err := s.checkUnique(a); err != nil {
		return err
	}
	s.steps[a] = spec
	return s.index(a, spec)
}

// RegisterCheck adds a check spec declared in base.
func (s *Strategy) RegisterCheck(base string, spec specs.Check) error {
	a, err := addressFor(base, spec)
	if err != nil {
		return err
	}
	if err := s.checkUnique(a); err != nil {
		return err
	}
	s.checks[a] = spec
	return s.index(a, spec)
}

func (s *Strategy) checkUnique(a addr.Address) error {
	if _, ok := s.artifacts[a]; ok {
		return fmt.Errorf("address %s already registered", a.String())
	}
	if _, ok := s.resources[a]; ok {
		return fmt.Errorf("address %s already registered", a.String())
	}
	if _, ok := s.steps[a]; ok {
		return fmt.Errorf("address %s already registered", a.String())
	}
	if _, ok := s.checks[a]; ok {
		return fmt.Errorf("address %s already registered", a.String())
	}
	return nil
}

// Artifacts returns every registered artifact, keyed by identity address.
func (s *Strategy) Artifacts() map[addr.Address]specs.Artifact {
	return s.artifacts
}

// Resources returns every registered resource, keyed by identity address.
func (s *Strategy) Resources() map[addr.Address]specs.Resource {
	return s.resources
}

// Steps returns every registered step, keyed by identity address.
func (s *Strategy) Steps() map[addr.Address]specs.Step {
	return s.steps
}

// Checks returns every registered check, keyed by identity address.
func (s *Strategy) Checks() map[addr.Address]specs.Check {
	return s.checks
}

// Dependencies returns the full mapping of dependency shapes declared for
// addr, excluding the identity (name) field, or nil if addr is unknown.
func (s *Strategy) Dependencies(a addr.Address) map[string]specs.Shape {
	return s.deps[a.Identity()]
}

// After returns the extra ordering addresses declared for addr.
func (s *Strategy) After(a addr.Address) []addr.Address {
	return s.after[a.Identity()]
}

// Kind reports which of the four kinds addr was registered under, and
// whether it is known to the strategy at all.
func (s *Strategy) Kind(a addr.Address) (specs.Kind, bool) {
	id := a.Identity()
	if _, ok := s.artifacts[id]; ok {
		return specs.KindArtifact, true
	}
	if _, ok := s.resources[id]; ok {
		return specs.KindResource, true
	}
	if _, ok := s.steps[id]; ok {
		return specs.KindStep, true
	}
	if _, ok := s.checks[id]; ok {
		return specs.KindCheck, true
	}
	return 0, false
}

// SortedStepAndCheckAddresses returns every step and check address in
// lexicographic string order, the deterministic iteration basis the
// planner's fixed-point loop relies on.
func (s *Strategy) SortedStepAndCheckAddresses() []addr.Address {
	out := make([]addr.Address, 0, len(s.steps)+len(s.checks))
	for a := range s.steps {
		out = append(out, a)
	}
	for a := range s.checks {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
