package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmaas/s7plan/internal/config"
	"github.com/jmaas/s7plan/internal/output"
	"github.com/jmaas/s7plan/internal/plc"
	"github.com/jmaas/s7plan/internal/publish"
	"github.com/jmaas/s7plan/internal/report"
	"github.com/jmaas/s7plan/internal/runner"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [plan-file]",
		Short: "Execute a test plan against the PLC",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExecute,
	}
}

func runExecute(cmd *cobra.Command, args []string) error {
	planPath, err := resolvePlanPath(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, planPath)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg.Verbose)

	p, findings, err := loadPlan(planPath, cfg)
	if err != nil {
		return err
	}
	// An invalid plan never reaches the PLC.
	if len(findings) > 0 {
		renderer := output.NewPretty(cmd.ErrOrStderr())
		if err := renderer.RenderValidation(findings); err != nil {
			return err
		}
		return fmt.Errorf("plan %s failed validation", planPath)
	}

	opts := runner.Options{
		ContinueOnFailure: cfg.ContinueOnFailure,
		DryRun:            cfg.DryRun,
		Logger:            logger,
	}

	if !cfg.DryRun {
		session, err := plc.Connect(cfg.IP, cfg.Rack, cfg.Slot, connectTimeout(cfg), logger)
		if err != nil {
			return err
		}
		defer session.Close()
		opts.Session = session
	}

	if cfg.MQTT.Broker != "" {
		publisher, err := publish.Connect(cfg.MQTT, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		opts.Observer = publisher
	}

	run, runErr := runner.New(opts).Run(cmd.Context(), p)

	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		if err := output.NewPretty(cmd.OutOrStdout()).RenderRun(run); err != nil {
			return err
		}
	case config.FormatJSON:
		envelope := output.Report{Plan: run.Plan, Run: &run}
		if err := output.NewJSON(cmd.OutOrStdout()).Render(envelope); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}

	if runErr != nil {
		return fmt.Errorf("run aborted: %w", runErr)
	}
	if run.Status != report.StatusPass {
		return fmt.Errorf("run finished with status %s", run.Status)
	}
	return nil
}
