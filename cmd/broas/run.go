package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/config"
	"github.com/sarchlab/broas/core"
	"github.com/sarchlab/broas/errs"
)

var runFlags struct {
	config   string
	logLevel string
	dump     bool
	sim      bool
	freq     string
	maxSteps uint64
	memory   int
}

var runCmd = &cobra.Command{
	Use:   "run [flags] program [args...]",
	Short: "Assemble and execute a program",
	Long: `Run assembles a program, or decodes a program image written by
"broas asm -o", and executes it. The exit status is the operand of the exit
instruction, 0 when the program runs past its last instruction, and 1 when
assembly or execution fails.

With --sim the program runs on a simulated core that retires one instruction
per cycle at the frequency given by --freq.
`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runProgram,
}

func init() {
	addRunFlags(runCmd)
	runCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&runFlags.config, "config", "", "configuration file (.yaml, .yml or .toml)")
	f.StringVar(&runFlags.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	f.BoolVar(&runFlags.dump, "dump", false, "print variables and memory to stderr when the program ends")
	f.BoolVar(&runFlags.sim, "sim", false, "run on a simulated core, one instruction per cycle")
	f.StringVar(&runFlags.freq, "freq", "1GHz", "frequency of the simulated core")
	f.Uint64Var(&runFlags.maxSteps, "max-steps", 0, "stop after this many instructions (0 means no limit)")
	f.IntVar(&runFlags.memory, "memory", 0, "number of memory words")
}

// loadConfig reads the configuration file, if any, and applies the flags
// the user set on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if runFlags.config != "" {
		var err error
		if cfg, err = config.Load(runFlags.config); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = runFlags.logLevel
	}
	if flags.Changed("max-steps") {
		cfg.Machine.MaxSteps = runFlags.maxSteps
	}
	if flags.Changed("memory") {
		cfg.Machine.MemorySize = runFlags.memory
	}

	return cfg, cfg.Validate()
}

func loadProgram(path string, opts asm.Options) (*asm.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.HostFault.Wrap(err, "open program")
	}
	defer f.Close()

	return asm.LoadAny(f, opts)
}

// parseFreq reads frequencies such as "1GHz", "500MHz" or "1e6".
func parseFreq(s string) (sim.Freq, error) {
	units := []struct {
		suffix string
		unit   sim.Freq
	}{
		{"GHz", sim.GHz},
		{"MHz", sim.MHz},
		{"KHz", sim.KHz},
		{"Hz", sim.Hz},
	}

	unit := sim.Hz
	num := s
	for _, u := range units {
		if strings.HasSuffix(strings.ToLower(s), strings.ToLower(u.suffix)) {
			unit = u.unit
			num = s[:len(s)-len(u.suffix)]
			break
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || v <= 0 {
		return 0, errs.Config.New("invalid frequency %q", s)
	}

	return sim.Freq(v) * unit, nil
}

func runProgram(cmd *cobra.Command, args []string) error {
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

	console := core.NewStdConsole(cmd.InOrStdin(), cmd.OutOrStdout())
	atexit.Register(func() { _ = console.Flush() })

	builder := cfg.Apply(core.NewBuilder()).
		WithArgs(args[1:]).
		WithConsole(console)

	var m *core.Machine
	if runFlags.sim {
		m, err = simulate(cmd.Context(), builder, prog)
	} else {
		m, err = builder.Build(prog)
		if err == nil {
			err = m.Run(cmd.Context())
		}
	}

	if m != nil {
		core.LogState(m)
		if runFlags.dump {
			_ = console.Flush()
			core.PrintState(cmd.ErrOrStderr(), m)
		}
	}

	if err != nil {
		_ = console.Flush()
		return err
	}

	exitCode = m.ExitCode()
	return nil
}

func simulate(ctx context.Context, builder core.Builder, prog *asm.Program) (*core.Machine, error) {
	freq, err := parseFreq(runFlags.freq)
	if err != nil {
		return nil, err
	}

	engine := sim.NewSerialEngine()
	c, err := builder.
		WithEngine(engine).
		WithFreq(freq).
		BuildCore("Broas.Core", prog)
	if err != nil {
		return nil, err
	}

	c.SetContext(ctx)
	c.TickNow()
	if err := engine.Run(); err != nil {
		return c.Machine(), errs.HostFault.Wrap(err, "simulation")
	}

	slog.Info("Simulation finished",
		"Steps", c.Machine().Steps(),
		"Time", float64(engine.CurrentTime()),
	)

	return c.Machine(), c.Err()
}
