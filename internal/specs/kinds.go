// Package specs declares the closed taxonomy of deployment-graph node
// kinds — Artifact, Resource, Step, Check — as a tagged union of behavior
// interfaces, generalizing the teacher's single Plugin interface
// (internal/plugin/interface.go) to four.
package specs

import "context"

// Kind identifies which of the four node kinds a registered spec belongs
// to.
type Kind int

const (
	KindArtifact Kind = iota
	KindResource
	KindStep
	KindCheck
)

func (k Kind) String() string {
	switch k {
	case KindArtifact:
		return "artifact"
	case KindResource:
		return "resource"
	case KindStep:
		return "step"
	case KindCheck:
		return "check"
	default:
		return "unknown"
	}
}

// Spec is the common surface every kind must implement: identity and the
// dependency shape used by the strategy graph builder and planner.
//
// Dependencies returns one Shape per addressable field, keyed by field
// name, excluding Name and After. Implementations build the Shape using
// AddrRef for fields that reference other nodes (the builder resolves the
// literal against the registering base path) and Inline for everything
// else.
type Spec interface {
	SpecName() string
	After() []string
	Dependencies() map[string]Shape
}

// Artifact is an immutable, revision-bound product queried for existence
// and resolved to a concrete value.
type Artifact interface {
	Spec
	Exists(ctx context.Context) (bool, error)
	Resolve(ctx context.Context) (any, error)
}

// Resource is an external mutable system read as current state.
type Resource interface {
	Spec
	State(ctx context.Context) (any, error)
}

// Step is a mutating action. Bind returns a copy of the step with its
// addressable fields replaced by the concrete values resolved from the
// results map (the Go analogue of rebinding an immutable dataclass from
// resolved dependency values before invoking a hook).
type Step interface {
	Spec
	Bind(values map[string]any) (Step, error)
	Snapshot(ctx context.Context) (any, error)
	Run(ctx context.Context, snapshot any) (any, error)
	Rollback(ctx context.Context, snapshot any) error
}

// Check is an observation that can reject a deployment by returning a
// *deployerrors.FailedCheckError from Check.
type Check interface {
	Spec
	Bind(values map[string]any) (Check, error)
	Check(ctx context.Context) (any, error)
}
