// Package cmd provides the command-line interface of tlbsim.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfg config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tlbsim",
	Short: "tlbsim drives the r4300 TLB with scripted CP0 instructions.",
	Long: `tlbsim drives the r4300 TLB with scripted CP0 instructions. ` +
		`It replays scenarios, decodes entry registers and reads back ` +
		`recorded TLB events.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")

		var err error

		cfg, err = loadConfig(envFile)
		if err != nil {
			return err
		}

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}

		logrus.SetLevel(level)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env",
		"File to load TLBSIM_* settings from, if it exists.")
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}
