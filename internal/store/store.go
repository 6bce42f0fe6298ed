// Package store persists plan snapshots per revision to a Git-managed
// directory tree, adapted from the teacher's internal/plugins/repo go-git
// usage (PlainOpen/PlainClone fallback, plumbing refs) but aimed at
// committing state rather than cloning a source checkout.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"deploystrat/internal/addr"
	"deploystrat/internal/observe"
	"deploystrat/internal/plan"
)

// Config describes how a Store locates and commits its backing repository.
type Config struct {
	RepoPath       string
	BasePath       string
	Push           bool
	RemoteLocation string
	AuthUsername   string
	AuthPassword   string
}

// Store is the Git-backed per-revision record of the latest plan value.
type Store struct {
	cfg Config
	log observe.Logger
}

// New returns a Store for cfg. It does not touch the disk; the Git
// repository at cfg.RepoPath is opened (or initialized) by InitState and
// SaveRevision.
func New(cfg Config, log observe.Logger) *Store {
	if log == nil {
		log = observe.NoopLogger()
	}
	return &Store{cfg: cfg, log: log}
}

func (s *Store) openOrInit() (*git.Repository, error) {
	repo, err := git.PlainOpen(s.cfg.RepoPath)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open state repository: %w", err)
	}
	s.log.Info("initializing state repository", "path", s.cfg.RepoPath)
	return git.PlainInit(s.cfg.RepoPath, false)
}

func (s *Store) stateDir() string {
	if s.cfg.BasePath == "" {
		return s.cfg.RepoPath
	}
	return filepath.Join(s.cfg.RepoPath, s.cfg.BasePath)
}

func (s *Store) revisionDir(revision string) string {
	return filepath.Join(s.stateDir(), "revisions", revision)
}

// InitState ensures the state directory and its revisions/ subdirectory
// exist, opening or initializing the backing Git repository in the process.
func (s *Store) InitState(ctx context.Context) error {
	if _, err := s.openOrInit(); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(s.stateDir(), "revisions"), 0o755)
}

// InitRevision ensures the per-revision directory exists.
func (s *Store) InitRevision(ctx context.Context, revision string) error {
	return os.MkdirAll(s.revisionDir(revision), 0o755)
}

// revisionJSON and actionJSON mirror plan.Plan/plan.Action with alphabetical
// field ordering so MarshalIndent produces byte-identical output for
// semantically identical plans, satisfying the idempotence requirement.
type revisionJSON struct {
	Plan struct {
		Actions []actionJSON `json:"actions"`
	} `json:"plan"`
}

type actionJSON struct {
	Address        string         `json:"address"`
	Error          any            `json:"error"`
	ResolvedInputs map[string]any `json:"resolved_inputs,omitempty"`
	Result         any            `json:"result"`
	Snapshot       any            `json:"snapshot"`
	State          string         `json:"state"`
	Type           string         `json:"type"`
}

func toJSON(p *plan.Plan) revisionJSON {
	var out revisionJSON
	out.Plan.Actions = make([]actionJSON, len(p.Actions))
	for i, a := range p.Actions {
		var errMsg any
		if a.Err != nil {
			errMsg = a.Err.Error()
		}
		out.Plan.Actions[i] = actionJSON{
			Address:        a.Address.String(),
			Error:          errMsg,
			ResolvedInputs: a.ResolvedInputs,
			Result:         a.Result,
			Snapshot:       a.Snapshot,
			State:          a.State.String(),
			Type:           a.Type.String(),
		}
	}
	return out
}

func fromJSON(base string, rj revisionJSON) (*plan.Plan, error) {
	actions := make([]plan.Action, len(rj.Plan.Actions))
	for i, aj := range rj.Plan.Actions {
		a, err := addr.Parse(base, aj.Address)
		if err != nil {
			return nil, err
		}
		actions[i] = plan.Action{
			Type:           actionTypeFromString(aj.Type),
			Address:        a,
			State:          stateFromString(aj.State),
			Snapshot:       aj.Snapshot,
			ResolvedInputs: aj.ResolvedInputs,
			Result:         aj.Result,
			Err:            errFromJSON(aj.Error),
		}
	}
	return &plan.Plan{Actions: actions}, nil
}

func errFromJSON(v any) error {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return errors.New(s)
	}
	return fmt.Errorf("%v", v)
}

func actionTypeFromString(s string) plan.ActionType {
	switch s {
	case "CHECK":
		return plan.ActionCheck
	case "ROLLBACK":
		return plan.ActionRollback
	default:
		return plan.ActionRun
	}
}

func stateFromString(s string) plan.ActionState {
	switch s {
	case "IN_PROGRESS":
		return plan.StateInProgress
	case "DONE":
		return plan.StateDone
	case "FAILED":
		return plan.StateFailed
	case "CANCELLED":
		return plan.StateCancelled
	default:
		return plan.StatePlanned
	}
}

// SaveRevision serializes p as canonical JSON (sorted keys, 4-space indent)
// to revisions/<revision>/state.json, stages and commits it, and — when
// configured — pushes to the remote.
func (s *Store) SaveRevision(ctx context.Context, revision string, p *plan.Plan) error {
	repo, err := s.openOrInit()
	if err != nil {
		return err
	}
	if err := s.InitRevision(ctx, revision); err != nil {
		return err
	}

	payload, err := canonicalJSON(toJSON(p))
	if err != nil {
		return fmt.Errorf("serialize revision: %w", err)
	}

	statePath := filepath.Join(s.revisionDir(revision), "state.json")
	if err := os.WriteFile(statePath, payload, 0o644); err != nil {
		return fmt.Errorf("write state.json: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	relPath, err := filepath.Rel(s.cfg.RepoPath, statePath)
	if err != nil {
		return err
	}
	if _, err := wt.Add(relPath); err != nil {
		return fmt.Errorf("stage state.json: %w", err)
	}

	_, err = wt.Commit(fmt.Sprintf("update state for revision %s", revision), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "deploystrat",
			Email: "deploystrat@localhost",
			When:  commitTime(),
		},
	})
	if err != nil && !errors.Is(err, git.ErrEmptyCommit) {
		return fmt.Errorf("commit state.json: %w", err)
	}

	if s.cfg.Push {
		if err := s.push(ctx, repo); err != nil {
			return err
		}
	}

	s.log.Info("saved revision", "revision", revision, "actions", len(p.Actions))
	return nil
}

func (s *Store) push(ctx context.Context, repo *git.Repository) error {
	opts := &git.PushOptions{RemoteName: "origin"}
	if s.cfg.RemoteLocation != "" {
		_, err := repo.CreateRemote(&gitconfig.RemoteConfig{
			Name: "origin",
			URLs: []string{s.cfg.RemoteLocation},
		})
		if err != nil && !errors.Is(err, git.ErrRemoteExists) {
			return fmt.Errorf("configure remote: %w", err)
		}
	}
	if s.cfg.AuthUsername != "" {
		opts.Auth = &githttp.BasicAuth{Username: s.cfg.AuthUsername, Password: s.cfg.AuthPassword}
	}
	if err := repo.PushContext(ctx, opts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push state repository: %w", err)
	}
	return nil
}

// LoadRevision reads and deserializes the persisted plan for revision,
// returning (nil, nil) if no state has been saved for it yet.
func (s *Store) LoadRevision(ctx context.Context, base, revision string) (*plan.Plan, error) {
	statePath := filepath.Join(s.revisionDir(revision), "state.json")
	data, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state.json: %w", err)
	}

	var rj revisionJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return nil, fmt.Errorf("decode state.json: %w", err)
	}
	return fromJSON(base, rj)
}

// canonicalJSON marshals v with sorted map keys and 4-space indentation.
// Go's encoding/json already sorts map[string]X keys and struct fields
// serialize in declaration order, so declaring actionJSON's fields
// alphabetically is what makes this canonical — MarshalIndent itself
// performs no additional reordering.
func canonicalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "    ")
}

// RenderJSON serializes p using the same canonical form SaveRevision
// persists, for callers (the CLI's plan diff view) that want to compare two
// plan values without writing either to disk.
func RenderJSON(p *plan.Plan) ([]byte, error) {
	return canonicalJSON(toJSON(p))
}

// commitTime is overridable in tests so commits are reproducible without
// wall-clock nondeterminism leaking into assertions.
var commitTime = func() time.Time { return time.Now() }
