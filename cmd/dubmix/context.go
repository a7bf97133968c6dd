package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"dubmix/internal/align"
	"dubmix/internal/config"
	"dubmix/internal/logging"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// overrides holds the flags shared by render and plan.
type overrides struct {
	clipsDir string
	policy   string
}

func (o *overrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.clipsDir, "clips", "", "Directory of pre-rendered <segment id>.wav clips (selects the clips backend)")
	cmd.Flags().StringVar(&o.policy, "policy", "", "Alignment policy: stretch or slot_fit")
}

// apply copies flag overrides into cfg.
func (o overrides) apply(cfg *config.Config) error {
	if dir := strings.TrimSpace(o.clipsDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve clips dir: %w", err)
		}
		cfg.Synth.Backend = "clips"
		cfg.Synth.ClipsDir = expanded
	}
	if strings.TrimSpace(o.policy) != "" {
		policy, err := align.ParsePolicy(o.policy)
		if err != nil {
			return err
		}
		cfg.Align.Policy = string(policy)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
