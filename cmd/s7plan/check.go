package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmaas/s7plan/internal/plc"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe PLC reachability and open a trial S7 session",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "")
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg.Verbose)
	out := cmd.OutOrStdout()

	if err := plc.Ping(cfg.IP, 2*time.Second); err != nil {
		return fmt.Errorf("host unreachable: %w", err)
	}
	fmt.Fprintf(out, "ping %s: ok\n", cfg.IP)

	session, err := plc.Connect(cfg.IP, cfg.Rack, cfg.Slot, connectTimeout(cfg), logger)
	if err != nil {
		return err
	}
	if err := session.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	fmt.Fprintf(out, "S7 session rack %d slot %d: ok\n", cfg.Rack, cfg.Slot)
	return nil
}
