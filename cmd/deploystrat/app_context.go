package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"

	"deploystrat/internal/loader"
	"deploystrat/internal/observe"
	"deploystrat/internal/runconfig"
	"deploystrat/internal/runconfig/yamlspec"
	"deploystrat/internal/store"
	"deploystrat/internal/strategy"
)

// AppContext bundles the long-lived services the CLI's subcommands share,
// mirroring the teacher's own AppContext bundling logger/use-cases at
// startup.
type AppContext struct {
	Logger observe.Logger
	Config *runconfig.Config
}

// CommandContext returns the command's context (falling back to Background)
// together with a component-scoped logger.
func (a *AppContext) CommandContext(cmd *cobra.Command, component string) (context.Context, observe.Logger) {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	return ctx, a.LoggerFor(component)
}

// LoggerFor derives a child logger scoped to component.
func (a *AppContext) LoggerFor(component string) observe.Logger {
	if a == nil || a.Logger == nil {
		return observe.NoopLogger()
	}
	return a.Logger.With("component", component)
}

// LoadConfig reads and validates the TOML configuration at path, resolving
// a relative path against cwd. Relative paths declared inside the
// configuration are used as written.
func (a *AppContext) LoadConfig(path, cwd string) error {
	abs := path
	if !filepath.IsAbs(abs) && cwd != "" {
		abs = filepath.Join(cwd, abs)
	}
	cfg, err := runconfig.Load(abs)
	if err != nil {
		return err
	}
	a.Config = cfg
	return nil
}

// BuildStrategy discovers every deploy file under the project repository and
// registers the specs it declares, generalizing the original's
// exec-user-code loader (spec.md §9) into this reference YAML walker.
func (a *AppContext) BuildStrategy() (*strategy.Strategy, error) {
	if a.Config == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	strat := strategy.New()

	root := a.Config.Project.RepoPath
	filename := a.Config.DeployFilename

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != filename {
			return nil
		}

		base, relErr := filepath.Rel(root, filepath.Dir(path))
		if relErr != nil {
			return relErr
		}
		if base == "." {
			base = ""
		}

		regs, loadErr := yamlspec.Load(base, path)
		if loadErr != nil {
			return fmt.Errorf("load %s: %w", path, loadErr)
		}
		return loader.Apply(strat, regs)
	})
	if err != nil {
		return nil, err
	}

	return strat, nil
}

// ResolveRevision returns the caller-supplied revision override, or — when
// none is given — the project repository's current HEAD commit, the
// "typically the current HEAD commit" default spec.md §6 describes.
func (a *AppContext) ResolveRevision(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	repo, err := git.PlainOpen(a.Config.Project.RepoPath)
	if err != nil {
		return "", fmt.Errorf("open project repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// Store builds the Git-backed revision store from the loaded configuration.
func (a *AppContext) Store() *store.Store {
	return store.New(store.Config{
		RepoPath:       a.Config.State.RepoPath,
		BasePath:       a.Config.State.BasePath,
		Push:           a.Config.State.Push,
		RemoteLocation: a.Config.State.RemoteLocation,
	}, a.LoggerFor("store"))
}

