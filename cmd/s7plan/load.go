package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jmaas/s7plan/internal/config"
	"github.com/jmaas/s7plan/internal/discovery"
	"github.com/jmaas/s7plan/internal/filter"
	"github.com/jmaas/s7plan/internal/plan"
)

// resolvePlanPath turns the optional positional argument into exactly one
// plan file, discovering *.plan.json when none is given.
func resolvePlanPath(args []string) (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}

	explicit := ""
	if len(args) > 0 {
		explicit = args[0]
	}
	paths, err := discovery.Plans(root, explicit)
	if err != nil {
		if explicit == "" {
			return "", fmt.Errorf("no plan files found; pass a plan file or add *.plan.json")
		}
		return "", err
	}
	if len(paths) > 1 {
		return "", fmt.Errorf("multiple plan files found (%s); pass one explicitly", strings.Join(paths, ", "))
	}
	return paths[0], nil
}

// loadConfig merges defaults, the config file next to the plan (falling
// back to the working directory), and CLI flags, in that order.
func loadConfig(cmd *cobra.Command, planPath string) (config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("determine working directory: %w", err)
	}

	dirs := []string{cwd}
	if planPath != "" {
		if planDir := filepath.Dir(planPath); planDir != cwd {
			dirs = []string{planDir, cwd}
		}
	}
	cfg, err := config.Load(dirs...)
	if err != nil {
		return config.Config{}, err
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, err
	}
	config.ApplyFlags(&cfg, flags)

	return cfg, nil
}

// loadPlan reads and filters the plan. Validation findings come back to
// the caller; commands decide whether they are fatal.
func loadPlan(planPath string, cfg config.Config) (*plan.Plan, []plan.ValidationError, error) {
	p, findings, err := plan.Load(planPath)
	if err != nil {
		return nil, nil, err
	}

	modulePatterns, err := filter.Compile(cfg.Modules)
	if err != nil {
		return nil, nil, err
	}
	testPatterns, err := filter.Compile(cfg.Tests)
	if err != nil {
		return nil, nil, err
	}
	return filter.Plan(p, modulePatterns, testPatterns), findings, nil
}

func newLogger(cmd *cobra.Command, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

func connectTimeout(cfg config.Config) time.Duration {
	return time.Duration(cfg.TimeoutMS) * time.Millisecond
}
