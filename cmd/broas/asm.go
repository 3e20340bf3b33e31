package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/errs"
)

var asmOutput string

var asmCmd = &cobra.Command{
	Use:   "asm [-o image] program",
	Short: "Assemble a program",
	Long: `Asm assembles a program and prints its disassembly, one instruction
per line with labels in place. With -o it writes a program image instead,
which "broas run" accepts in place of the source.
`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg.Log); err != nil {
			return err
		}

		prog, err := loadProgram(args[0], cfg.AsmOptions())
		if err != nil {
			return err
		}

		if asmOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), prog.String())
			return nil
		}

		f, err := os.Create(asmOutput)
		if err != nil {
			return errs.HostFault.Wrap(err, "create image")
		}
		defer f.Close()

		return asm.EncodeImage(f, prog)
	},
}

func init() {
	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "", "write a program image to this file")
	asmCmd.Flags().StringVar(&runFlags.config, "config", "", "configuration file (.yaml, .yml or .toml)")
	asmCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	rootCmd.AddCommand(asmCmd)
}
