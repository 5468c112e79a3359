package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmaas/s7plan/internal/config"
	"github.com/jmaas/s7plan/internal/output"
	"github.com/jmaas/s7plan/internal/plan"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [plan-file]",
		Short: "Check a plan's structure without touching the PLC",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	planPath, err := resolvePlanPath(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, planPath)
	if err != nil {
		return err
	}

	p, findings, err := plan.Load(planPath)
	if err != nil {
		return err
	}
	// Loading already collects most problems; Validate covers the
	// structural invariants on top.
	findings = append(findings, plan.Validate(p)...)

	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		if len(findings) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "plan %s is valid\n", planPath)
			return nil
		}
		if err := output.NewPretty(cmd.OutOrStdout()).RenderValidation(findings); err != nil {
			return err
		}
	case config.FormatJSON:
		envelope := output.Report{Plan: p.Name, Findings: findings}
		if err := output.NewJSON(cmd.OutOrStdout()).Render(envelope); err != nil {
			return err
		}
		if len(findings) == 0 {
			return nil
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}

	return fmt.Errorf("plan %s has %d validation findings", planPath, len(findings))
}
