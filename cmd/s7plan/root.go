package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "s7plan",
		Short:         "s7plan executes test plans against Siemens S7 PLCs",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("ip", "127.0.0.1", "PLC IP address")
	persistent.Int("rack", 0, "PLC rack number")
	persistent.Int("slot", 1, "PLC slot number")
	persistent.Int("timeout", 5000, "connection timeout in milliseconds")
	persistent.StringArray("module", nil, "module filter (substring or /regex/, repeatable)")
	persistent.StringArray("test", nil, "test filter (substring or /regex/, repeatable)")
	persistent.Bool("continue-on-failure", false, "keep executing a test after a failed step")
	persistent.Bool("dry-run", false, "walk the plan without touching the PLC")
	persistent.String("format", "pretty", "output format (pretty|json)")
	persistent.String("publish", "", "MQTT broker to publish live results to, e.g. tcp://host:1883")
	persistent.BoolP("verbose", "v", false, "log PLC traffic and step detail")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newSelfTestCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
