package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmaas/s7plan/internal/config"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	if flags.Changed("ip") {
		v, err := flags.GetString("ip")
		if err != nil {
			return values, fmt.Errorf("parse --ip: %w", err)
		}
		values.IP = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("rack") {
		v, err := flags.GetInt("rack")
		if err != nil {
			return values, fmt.Errorf("parse --rack: %w", err)
		}
		values.Rack = config.IntFlag{Value: v, Set: true}
	}

	if flags.Changed("slot") {
		v, err := flags.GetInt("slot")
		if err != nil {
			return values, fmt.Errorf("parse --slot: %w", err)
		}
		values.Slot = config.IntFlag{Value: v, Set: true}
	}

	if flags.Changed("timeout") {
		v, err := flags.GetInt("timeout")
		if err != nil {
			return values, fmt.Errorf("parse --timeout: %w", err)
		}
		values.TimeoutMS = config.IntFlag{Value: v, Set: true}
	}

	if flags.Changed("module") {
		v, err := flags.GetStringArray("module")
		if err != nil {
			return values, fmt.Errorf("parse --module: %w", err)
		}
		values.Modules = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("test") {
		v, err := flags.GetStringArray("test")
		if err != nil {
			return values, fmt.Errorf("parse --test: %w", err)
		}
		values.Tests = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("format") {
		v, err := flags.GetString("format")
		if err != nil {
			return values, fmt.Errorf("parse --format: %w", err)
		}
		values.Format = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("continue-on-failure") {
		v, err := flags.GetBool("continue-on-failure")
		if err != nil {
			return values, fmt.Errorf("parse --continue-on-failure: %w", err)
		}
		values.ContinueOnFailure = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("dry-run") {
		v, err := flags.GetBool("dry-run")
		if err != nil {
			return values, fmt.Errorf("parse --dry-run: %w", err)
		}
		values.DryRun = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("verbose") {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return values, fmt.Errorf("parse --verbose: %w", err)
		}
		values.Verbose = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("publish") {
		v, err := flags.GetString("publish")
		if err != nil {
			return values, fmt.Errorf("parse --publish: %w", err)
		}
		values.Publish = config.StringFlag{Value: v, Set: true}
	}

	return values, nil
}
