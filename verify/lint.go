package verify

import (
	"fmt"

	"github.com/sarchlab/broas/asm"
)

// RunLint performs static lint checks on an assembled program.
// Returns a list of issues found, or empty list if no issues.
func RunLint(prog *asm.Program) []Issue {
	var issues []Issue

	issues = append(issues, checkLabels(prog)...)

	written := make(map[string]bool)
	for _, inst := range prog.Instructions {
		if inst.Op.WritesDest() && len(inst.Operands) > 0 &&
			inst.Operands[0].Kind == asm.KindVariable {
			written[inst.Operands[0].Text] = true
		}
	}

	reported := make(map[string]bool)
	for idx, inst := range prog.Instructions {
		if inst.Op.WritesDest() && len(inst.Operands) > 0 {
			dst := inst.Operands[0]
			if dst.Kind != asm.KindVariable {
				issues = append(issues, Issue{
					Type:    IssueDest,
					Index:   idx,
					Line:    inst.Line,
					Message: fmt.Sprintf("%s writes to %s %s, only variables can be set", inst.Op, dst.Kind, dst.Text),
					Details: map[string]interface{}{"operand": dst.Text},
				})
			}
		}

		for _, slot := range readSlots(inst) {
			t := inst.Operands[slot]
			switch t.Kind {
			case asm.KindLabel:
				if _, ok := prog.Labels.Lookup(t.Name()); !ok {
					issues = append(issues, Issue{
						Type:    IssueUndefined,
						Index:   idx,
						Line:    inst.Line,
						Message: fmt.Sprintf("%s not defined", t.Text),
						Details: map[string]interface{}{"label": t.Name()},
					})
				}
			case asm.KindVariable:
				if !written[t.Text] && !reported[t.Text] {
					reported[t.Text] = true
					issues = append(issues, Issue{
						Type:    IssueUnset,
						Index:   idx,
						Line:    inst.Line,
						Message: fmt.Sprintf("%s is read but never set", t.Text),
						Details: map[string]interface{}{"variable": t.Text},
					})
				}
			}
		}

		if slot := targetSlot(inst.Op); slot >= 0 && slot < len(inst.Operands) {
			t := inst.Operands[slot]
			if t.Kind == asm.KindImmediate && (t.Value < 0 || t.Value > int64(prog.Len())) {
				issues = append(issues, Issue{
					Type:    IssueTarget,
					Index:   idx,
					Line:    inst.Line,
					Message: fmt.Sprintf("%s target %d outside [0, %d]", inst.Op, t.Value, prog.Len()),
					Details: map[string]interface{}{"target": t.Value},
				})
			}
		}
	}

	return issues
}

func checkLabels(prog *asm.Program) []Issue {
	var issues []Issue

	first := make(map[string]int)
	prog.Labels.Each(func(l asm.Label) {
		index, seen := first[l.Name]
		if !seen {
			first[l.Name] = l.Index
			return
		}

		issues = append(issues, Issue{
			Type:  IssueDuplicate,
			Index: -1,
			Message: fmt.Sprintf("label @%s defined again at instruction %d, first definition at %d wins",
				l.Name, l.Index, index),
			Details: map[string]interface{}{"label": l.Name, "first": index, "again": l.Index},
		})
	})

	return issues
}
