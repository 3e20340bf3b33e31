package config_test

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joomcode/errorx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/config"
	"github.com/sarchlab/broas/core"
	"github.com/sarchlab/broas/errs"
)

var _ = Describe("Config", func() {
	var dir string

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should provide usable defaults", func() {
		cfg := config.Default()

		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Machine.MemorySize).To(Equal(core.DefaultMemorySize))
		Expect(cfg.AsmOptions().MaxTokens).To(Equal(65536))
	})

	It("should load YAML", func() {
		path := write("broas.yaml", `
machine:
  memory_size: 64
  max_steps: 1000
log:
  level: debug
  format: json
`)

		cfg, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Machine.MemorySize).To(Equal(64))
		Expect(cfg.Machine.MaxSteps).To(Equal(uint64(1000)))
		Expect(cfg.Machine.MaxInstructions).To(Equal(4096))
		Expect(cfg.Log.Format).To(Equal("json"))
	})

	It("should load TOML", func() {
		path := write("broas.toml", `
[lexer]
max_line_length = 80
max_tokens = 200

[log]
level = "trace"
`)

		cfg, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.AsmOptions().MaxLineLength).To(Equal(80))
		Expect(cfg.AsmOptions().MaxTokens).To(Equal(200))
		Expect(cfg.Machine.MemorySize).To(Equal(core.DefaultMemorySize))
	})

	It("should reject unknown extensions", func() {
		path := write("broas.ini", "x=1\n")

		_, err := config.Load(path)

		Expect(errorx.IsOfType(err, errs.Config)).To(BeTrue())
	})

	It("should reject malformed files", func() {
		path := write("broas.yaml", "machine: [\n")

		_, err := config.Load(path)

		Expect(errorx.IsOfType(err, errs.Config)).To(BeTrue())
	})

	It("should reject invalid values", func() {
		path := write("broas.yml", "machine:\n  memory_size: 0\n")

		_, err := config.Load(path)

		Expect(errorx.IsOfType(err, errs.Config)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("memory_size"))
	})

	It("should report missing files", func() {
		_, err := config.Load(filepath.Join(dir, "absent.yaml"))

		Expect(errorx.IsOfType(err, errs.Config)).To(BeTrue())
	})

	DescribeTable("log levels",
		func(name string, want slog.Level) {
			l, err := config.ParseLevel(name)

			Expect(err).NotTo(HaveOccurred())
			Expect(l).To(Equal(want))
		},
		Entry("trace", "trace", core.LevelTrace),
		Entry("debug", "debug", slog.LevelDebug),
		Entry("info", "INFO", slog.LevelInfo),
		Entry("warn", "warn", slog.LevelWarn),
		Entry("error", "error", slog.LevelError),
	)

	It("should reject unknown log levels", func() {
		_, err := config.ParseLevel("loud")

		Expect(errorx.IsOfType(err, errs.Config)).To(BeTrue())
	})

	It("should carry machine limits into a builder", func() {
		cfg := config.Default()
		cfg.Machine.MemorySize = 4

		m, err := cfg.Apply(core.NewBuilder()).Build(&asm.Program{})

		Expect(err).NotTo(HaveOccurred())
		Expect(m.Memory().Size()).To(Equal(4))
	})
})
