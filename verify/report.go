package verify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/core"
	"github.com/sarchlab/broas/errs"
)

// VerificationReport represents a complete verification report
type VerificationReport struct {
	InstructionCount int
	LabelCount       int
	LintIssues       []Issue
	ByType           map[IssueType][]Issue
	Sandbox          *SandboxResult
}

// GenerateReport runs lint and, when maxSimSteps is positive, a sandbox
// run on a machine made by b, bounded by that many steps.
func GenerateReport(prog *asm.Program, b core.Builder, maxSimSteps uint64) *VerificationReport {
	report := &VerificationReport{
		InstructionCount: prog.Len(),
		LabelCount:       prog.Labels.Len(),
		ByType:           make(map[IssueType][]Issue),
	}

	report.LintIssues = RunLint(prog)
	for _, issue := range report.LintIssues {
		report.ByType[issue.Type] = append(report.ByType[issue.Type], issue)
	}

	if maxSimSteps > 0 {
		res := RunSandbox(context.Background(), b, prog, maxSimSteps)
		report.Sandbox = &res
	}

	return report
}

// OK reports whether lint found nothing and the sandbox run, if any,
// ended without an error.
func (r *VerificationReport) OK() bool {
	if len(r.LintIssues) > 0 {
		return false
	}
	return r.Sandbox == nil || r.Sandbox.Err == nil
}

var issueOrder = []IssueType{
	IssueUndefined, IssueDest, IssueTarget, IssueDuplicate, IssueUnset,
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)
	dash := strings.Repeat("-", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "BROAS PROGRAM VERIFICATION REPORT")
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "\nLoaded %d instructions, %d labels\n",
		r.InstructionCount, r.LabelCount)

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 1: STATIC LINT CHECKS")
	fmt.Fprintln(w, separator)

	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "No lint issues found")
	} else {
		fmt.Fprintf(w, "Found %d lint issues:\n", len(r.LintIssues))
		for _, t := range issueOrder {
			issues := r.ByType[t]
			if len(issues) == 0 {
				continue
			}

			fmt.Fprintf(w, "\n%s ISSUES (%d):\n", t, len(issues))
			fmt.Fprintln(w, dash)
			for _, issue := range issues {
				if issue.Index < 0 {
					fmt.Fprintf(w, "  %s\n", issue.Message)
					continue
				}
				fmt.Fprintf(w, "  [inst %d line %d] %s\n",
					issue.Index, issue.Line, issue.Message)
			}
		}
	}

	if r.Sandbox != nil {
		fmt.Fprintln(w, "\n"+separator)
		fmt.Fprintln(w, "STAGE 2: SANDBOX RUN")
		fmt.Fprintln(w, separator)

		s := r.Sandbox
		if s.Err != nil {
			fmt.Fprintf(w, "Run failed after %d steps: %v\n", s.Steps, s.Err)
		} else {
			fmt.Fprintf(w, "Halted after %d steps with exit code %d\n", s.Steps, s.ExitCode)
		}
		fmt.Fprintf(w, "Output: %d bytes %q\n", len(s.Output), s.Output)
		if s.Syscalls > 0 {
			fmt.Fprintf(w, "Refused %d system calls\n", s.Syscalls)
		}
	}

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "VERIFICATION SUMMARY")
	fmt.Fprintln(w, separator)

	counts := make([]string, 0, len(issueOrder))
	for _, t := range issueOrder {
		counts = append(counts, fmt.Sprintf("%d %s", len(r.ByType[t]), t))
	}
	fmt.Fprintf(w, "Lint Result: %d issues detected (%s)\n",
		len(r.LintIssues), strings.Join(counts, ", "))
	if r.OK() {
		fmt.Fprintln(w, "PROGRAM PASSED ALL CHECKS")
	} else {
		fmt.Fprintln(w, "PROGRAM HAS PROBLEMS")
	}
	fmt.Fprintln(w)
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errs.HostFault.Wrap(err, "failed to create report file")
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}
