// Package runconfig loads the TOML-shaped project configuration spec.md §6
// describes, validating required fields the way the teacher's
// internal/config package validates YAML deploy files — struct tags plus a
// shared go-playground/validator instance — generalized from a deploy-file
// schema to this orchestrator's repo/state/plugin configuration.
package runconfig

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// StateConfig configures the Git-backed revision store.
type StateConfig struct {
	RepoPath       string `toml:"repo_path" validate:"required"`
	BasePath       string `toml:"base_path"`
	Push           bool   `toml:"push"`
	RemoteLocation string `toml:"remote_location" validate:"required_if=Push true"`
}

// ProjectConfig configures discovery of the deploy file in the source tree.
type ProjectConfig struct {
	RepoPath string `toml:"repo_path" validate:"required"`
}

// Config is the top-level decoded TOML document.
type Config struct {
	State          StateConfig       `toml:"state" validate:"required"`
	Project        ProjectConfig     `toml:"project" validate:"required"`
	DeployFilename string            `toml:"deploy_filename"`
	Plugins        []string          `toml:"plugins"`
	Vars           map[string]any    `toml:"vars"`
}

const defaultDeployFilename = "DEPLOY"

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func sharedValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New()
	})
	return validatorInst
}

// Load reads and validates the TOML configuration file at path, applying the
// deploy_filename default spec.md §6 specifies.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if cfg.DeployFilename == "" {
		cfg.DeployFilename = defaultDeployFilename
	}

	if err := sharedValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}

	return &cfg, nil
}
