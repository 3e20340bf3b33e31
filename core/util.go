package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	LevelTrace slog.Level = slog.LevelDebug - 4
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// PrintState writes the variable table and the non-zero memory words of m.
func PrintState(w io.Writer, m *Machine) {
	fmt.Fprintf(w, "==============State@PC %d (%d steps)==============\n",
		m.PC(), m.Steps())

	varTable := table.NewWriter()
	varTable.SetTitle("Variables")
	varTable.AppendHeader(table.Row{"#", "Name", "Value"})
	i := 0
	m.Variables().Each(func(v Variable) {
		varTable.AppendRow(table.Row{i, v.Name, int64(v.Value)})
		i++
	})
	fmt.Fprintln(w, varTable.Render())
	fmt.Fprintln(w)

	memTable := table.NewWriter()
	memTable.SetTitle("Memory (non-zero words)")
	memTable.AppendHeader(table.Row{"Index", "Value", "Hex"})
	mem := m.Memory()
	for idx := 0; idx < mem.Size(); idx++ {
		v, _ := mem.Load(Word(idx))
		if v == 0 {
			continue
		}
		memTable.AppendRow(table.Row{idx, int64(v), fmt.Sprintf("%#x", uint64(v))})
	}
	fmt.Fprintln(w, memTable.Render())
	fmt.Fprintln(w, "================================================")
}

func LogState(m *Machine) {
	vars := map[string]int64{}
	m.Variables().Each(func(v Variable) {
		vars[v.Name] = int64(v.Value)
	})

	slog.Debug("StateCheckpoint",
		"PC", m.PC(),
		"Steps", m.Steps(),
		"Halted", m.Halted(),
		"Variables", vars,
	)
}
