package main

import (
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"

	"github.com/sarchlab/broas/core"
	"github.com/sarchlab/broas/errs"
	"github.com/sarchlab/broas/verify"
)

var lintFlags struct {
	sandboxSteps uint64
	report       string
}

var lintCmd = &cobra.Command{
	Use:   "lint program",
	Short: "Check a program without running it",
	Long: `Lint assembles a program and reports undefined labels, writes to
anything but a variable, constant jump targets out of range, labels defined
twice, and variables that are read but never set.

With --sandbox-steps the program is also run on a private machine with no
input and no system calls, for at most that many instructions.
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

		report := verify.GenerateReport(prog, cfg.Apply(core.NewBuilder()), lintFlags.sandboxSteps)
		report.WriteReport(cmd.OutOrStdout())

		if lintFlags.report != "" {
			if err := report.SaveReportToFile(lintFlags.report); err != nil {
				return err
			}
		}

		if len(report.LintIssues) > 0 {
			return errs.Assembly.New("%s: %d lint issues", args[0], len(report.LintIssues))
		}
		if report.Sandbox != nil && report.Sandbox.Err != nil {
			return errorx.Decorate(report.Sandbox.Err, "%s: sandbox run failed", args[0])
		}
		return nil
	},
}

func init() {
	f := lintCmd.Flags()
	f.Uint64Var(&lintFlags.sandboxSteps, "sandbox-steps", 0, "also run the program in a sandbox for at most this many instructions")
	f.StringVar(&lintFlags.report, "report", "", "save the report to this file")
	f.StringVar(&runFlags.config, "config", "", "configuration file (.yaml, .yml or .toml)")
	f.StringVar(&runFlags.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	rootCmd.AddCommand(lintCmd)
}
