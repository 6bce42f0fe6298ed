// Package testspecs provides minimal Artifact/Resource/Step/Check fakes
// shared by the strategy, planner, exec, and loader test suites, mirroring
// the teacher's internal/plugin/mock_plugin_test.go fake-plugin pattern.
package testspecs

import (
	"context"
	"fmt"

	"deploystrat/internal/deployerrors"
	"deploystrat/internal/specs"
)

// Artifact is a fake artifact whose existence and resolved value are set
// directly by the test.
type Artifact struct {
	specs.Base
	Available bool
	Value     any
	Deps      map[string]specs.Shape
}

func (a *Artifact) Dependencies() map[string]specs.Shape { return a.Deps }
func (a *Artifact) Exists(ctx context.Context) (bool, error) {
	return a.Available, nil
}
func (a *Artifact) Resolve(ctx context.Context) (any, error) {
	if !a.Available {
		return nil, fmt.Errorf("artifact %s not available", a.Name)
	}
	return a.Value, nil
}

// Resource is a fake resource whose state is fixed by the test.
type Resource struct {
	specs.Base
	Value any
	Deps  map[string]specs.Shape
}

func (r *Resource) Dependencies() map[string]specs.Shape { return r.Deps }
func (r *Resource) State(ctx context.Context) (any, error) {
	return r.Value, nil
}

// Step is a fake step recording run/rollback/snapshot invocations for test
// assertions.
type Step struct {
	specs.Base
	Deps   map[string]specs.Shape
	Bound  map[string]any
	RunErr error
	RunFn  func(bound map[string]any) (any, error)

	SnapshotResult any
	SnapshotErr    error

	RollbackErr error
	Rollbacks   *[]string
}

func (s *Step) Dependencies() map[string]specs.Shape { return s.Deps }

func (s *Step) Bind(values map[string]any) (specs.Step, error) {
	bound := *s
	bound.Bound = values
	return &bound, nil
}

func (s *Step) Snapshot(ctx context.Context) (any, error) {
	if s.SnapshotErr != nil {
		return nil, s.SnapshotErr
	}
	return s.SnapshotResult, nil
}

func (s *Step) Run(ctx context.Context, snapshot any) (any, error) {
	if s.RunErr != nil {
		return nil, s.RunErr
	}
	if s.RunFn != nil {
		return s.RunFn(s.Bound)
	}
	return map[string]any{"ran": s.Name}, nil
}

func (s *Step) Rollback(ctx context.Context, snapshot any) error {
	if s.Rollbacks != nil {
		*s.Rollbacks = append(*s.Rollbacks, s.Name)
	}
	return s.RollbackErr
}

// Check is a fake check that either passes, fails (FailedCheckError), or
// errors outright (StepError), as configured by the test.
type Check struct {
	specs.Base
	Deps     map[string]specs.Shape
	Bound    map[string]any
	Pass     bool
	RawErr   error
	ResultOK any
}

func (c *Check) Dependencies() map[string]specs.Shape { return c.Deps }

func (c *Check) Bind(values map[string]any) (specs.Check, error) {
	bound := *c
	bound.Bound = values
	return &bound, nil
}

func (c *Check) Check(ctx context.Context) (any, error) {
	if c.RawErr != nil {
		return nil, c.RawErr
	}
	if !c.Pass {
		return nil, deployerrors.NewFailedCheckError(map[string]any{"passed": false})
	}
	if c.ResultOK != nil {
		return c.ResultOK, nil
	}
	return map[string]any{"passed": true}, nil
}
