// Package yamlspec is a reference deploy-file loader: a YAML document
// describing artifacts/resources/steps/checks in terms of a handful of
// built-in primitive kinds, decoded with gopkg.in/yaml.v3 the way the
// teacher's internal/infrastructure/config.YAMLLoader decodes pipeline YAML
// into domain types. spec.md §1 treats the deploy-file loader as an
// external collaborator referenced only by interface — this package is one
// concrete implementation a driver may substitute for the DSL evaluator the
// original ran user code through.
package yamlspec

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"deploystrat/internal/deployerrors"
	"deploystrat/internal/loader"
	"deploystrat/internal/specs"
)

// document is the on-disk shape of a deploy file.
type document struct {
	Artifacts []artifactDecl `yaml:"artifacts"`
	Steps     []stepDecl     `yaml:"steps"`
	Checks    []checkDecl    `yaml:"checks"`
}

type artifactDecl struct {
	Name      string `yaml:"name"`
	Available bool   `yaml:"available"`
	Value     any    `yaml:"value"`
}

type stepDecl struct {
	Name  string            `yaml:"name"`
	After []string          `yaml:"after"`
	Deps  map[string]string `yaml:"deps"`
	Run   []string          `yaml:"run"`
}

type checkDecl struct {
	Name  string            `yaml:"name"`
	After []string          `yaml:"after"`
	Deps  map[string]string `yaml:"deps"`
}

// Load reads a YAML deploy file from path and returns the registrations it
// declares, scoped to base.
func Load(base, path string) ([]loader.Registration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deploy file %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse deploy file %s: %w", path, err)
	}

	var regs []loader.Registration
	for _, a := range doc.Artifacts {
		regs = append(regs, loader.Registration{
			Base: base,
			Kind: specs.KindArtifact,
			Spec: &literalArtifact{
				Base:      specs.Base{Name: a.Name},
				available: a.Available,
				value:     a.Value,
			},
		})
	}
	for _, s := range doc.Steps {
		regs = append(regs, loader.Registration{
			Base: base,
			Kind: specs.KindStep,
			Spec: &shellStep{
				Base:    specs.Base{Name: s.Name, AfterAddrs: s.After},
				deps:    depsShape(s.Deps),
				command: s.Run,
			},
		})
	}
	for _, c := range doc.Checks {
		regs = append(regs, loader.Registration{
			Base: base,
			Kind: specs.KindCheck,
			Spec: &presenceCheck{
				Base: specs.Base{Name: c.Name, AfterAddrs: c.After},
				deps: depsShape(c.Deps),
			},
		})
	}
	return regs, nil
}

func depsShape(raw map[string]string) map[string]specs.Shape {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]specs.Shape, len(raw))
	for k, v := range raw {
		out[k] = specs.AddrRef(v)
	}
	return out
}

// literalArtifact is the YAML-declared stand-in for an externally produced
// artifact: its availability and value are fixed at load time rather than
// queried from a real build system.
type literalArtifact struct {
	specs.Base
	available bool
	value     any
}

func (a *literalArtifact) Dependencies() map[string]specs.Shape { return nil }
func (a *literalArtifact) Exists(ctx context.Context) (bool, error) {
	return a.available, nil
}
func (a *literalArtifact) Resolve(ctx context.Context) (any, error) {
	return a.value, nil
}

// shellStep records its declared command line: its RUN hook returns the
// command and the bound inputs as the result, without executing anything.
// Rollback is a no-op.
type shellStep struct {
	specs.Base
	deps    map[string]specs.Shape
	command []string
	bound   map[string]any
}

func (s *shellStep) Dependencies() map[string]specs.Shape { return s.deps }

func (s *shellStep) Bind(values map[string]any) (specs.Step, error) {
	bound := *s
	bound.bound = values
	return &bound, nil
}

func (s *shellStep) Snapshot(ctx context.Context) (any, error) {
	return nil, nil
}

func (s *shellStep) Run(ctx context.Context, snapshot any) (any, error) {
	return map[string]any{"command": s.command, "inputs": s.bound}, nil
}

func (s *shellStep) Rollback(ctx context.Context, snapshot any) error {
	return nil
}

// presenceCheck passes once every declared dependency resolves to a
// non-nil value, the minimal built-in check kind a deploy file can declare
// without writing Go.
type presenceCheck struct {
	specs.Base
	deps  map[string]specs.Shape
	bound map[string]any
}

func (c *presenceCheck) Dependencies() map[string]specs.Shape { return c.deps }

func (c *presenceCheck) Bind(values map[string]any) (specs.Check, error) {
	bound := *c
	bound.bound = values
	return &bound, nil
}

func (c *presenceCheck) Check(ctx context.Context) (any, error) {
	for name, v := range c.bound {
		if v == nil {
			return nil, deployerrors.NewFailedCheckError(map[string]any{
				"passed": false,
				"reason": fmt.Sprintf("dependency %q missing", name),
			})
		}
	}
	return map[string]any{"passed": true}, nil
}
