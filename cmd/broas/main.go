// Command broas assembles and runs broas programs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/broas/config"
)

// exitCode is the status the process ends with when no error occurred.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "broas [flags] program [args...]",
	Short: "Assembler and interpreter for broas programs",
	Long: `Broas runs line oriented assembly programs. A program is a list of
instructions, one opcode followed by its operands, with @labels marking
jump targets and ; starting comments.

Called with a program file and no subcommand, broas runs the program, the
same as "broas run". The remaining arguments are passed to the program
through memory: word 0 holds their count and words 1..n their addresses.
`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runProgram(cmd, args)
	},
}

func init() {
	addRunFlags(rootCmd)
	rootCmd.Flags().SetInterspersed(false)
}

// setupLogging installs the default slog handler on stderr.
func setupLogging(cfg config.Log) error {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	atexit.Register(stop)

	// The first signal cancels the run between instructions. Restoring the
	// default handlers lets a second one end a program blocked in scan.
	go func() {
		<-ctx.Done()
		stop()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "broas: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(exitCode)
}
