package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmaas/s7plan/internal/config"
	"github.com/jmaas/s7plan/internal/output"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [plan-file]",
		Short: "List the plan's modules, tests and steps",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	planPath, err := resolvePlanPath(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, planPath)
	if err != nil {
		return err
	}

	p, findings, err := loadPlan(planPath, cfg)
	if err != nil {
		return err
	}

	if len(p.Modules) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching modules or tests")
		return nil
	}

	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		if err := output.NewPretty(cmd.OutOrStdout()).RenderList(p); err != nil {
			return err
		}
	case config.FormatJSON:
		envelope := output.Report{Plan: p.Name, Modules: output.Listing(p), Findings: findings}
		if err := output.NewJSON(cmd.OutOrStdout()).Render(envelope); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}

	if len(findings) > 0 && strings.ToLower(cfg.Format) == config.FormatPretty {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: plan has %d validation findings; see `s7plan validate`\n", len(findings))
	}

	return nil
}
