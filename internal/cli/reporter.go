package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	scafferrors "github.com/toyz/scaffold/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	quiet   bool
}

// NewDiagnosticReporter creates a new diagnostic reporter
func NewDiagnosticReporter(verbose, quiet bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		quiet:   quiet,
	}
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string) {
	if r.quiet {
		return
	}
	warn := color.New(color.FgYellow, color.Bold)
	warn.Fprint(os.Stderr, "! ")
	fmt.Fprintf(os.Stderr, "%s\n", message)
}

// ReportError provides comprehensive error reporting with user-friendly output
func (r *DiagnosticReporter) ReportError(err error) {
	header := color.New(color.FgRed, color.Bold)
	header.Fprintf(os.Stderr, "\nERROR: Member Synthesis Failed\n")
	fmt.Fprintf(os.Stderr, "==============================\n\n")

	var multi *scafferrors.MultipleErrors
	if stderrors.As(err, &multi) {
		fmt.Fprintf(os.Stderr, "%d type(s) failed:\n\n", multi.Count())
		for i, se := range multi.Errors {
			fmt.Fprintf(os.Stderr, "%d. ", i+1)
			r.reportScaffoldError(se)
		}
		return
	}

	var se scafferrors.ScaffoldError
	if stderrors.As(err, &se) {
		r.reportScaffoldError(se)
		return
	}
	fmt.Fprintf(os.Stderr, "Message: %s\n\n", err.Error())
}

// reportScaffoldError reports a ScaffoldError with full context and suggestions
func (r *DiagnosticReporter) reportScaffoldError(se scafferrors.ScaffoldError) {
	typeStr := se.ErrorCode().String()
	fmt.Fprintf(os.Stderr, "Type: %s\n", typeStr)
	fmt.Fprintf(os.Stderr, "%s\n\n", strings.Repeat("-", len(typeStr)+6))

	fmt.Fprintf(os.Stderr, "Message: %s\n\n", se.Error())

	if loc := se.Location(); !loc.IsEmpty() {
		fmt.Fprintf(os.Stderr, "Location: %s\n\n", loc.String())
	}

	if r.verbose && se.Unwrap() != nil {
		fmt.Fprintf(os.Stderr, "Underlying cause: %s\n\n", se.Unwrap().Error())
	}

	if ctx := se.Context(); len(ctx) > 0 {
		fmt.Fprintf(os.Stderr, "Context:\n")
		for key, value := range ctx {
			fmt.Fprintf(os.Stderr, "   %s: %v\n", formatContextKey(key), value)
		}
		fmt.Fprintf(os.Stderr, "\n")
	}

	if suggestions := se.Suggestions(); len(suggestions) > 0 {
		fmt.Fprintf(os.Stderr, "Suggestions:\n")
		for i, suggestion := range suggestions {
			fmt.Fprintf(os.Stderr, "   %d. %s\n", i+1, suggestion)
		}
		fmt.Fprintf(os.Stderr, "\n")
	}

	r.printAdditionalHelp(se.ErrorCode())
}

// printAdditionalHelp prints additional help based on the error code
func (r *DiagnosticReporter) printAdditionalHelp(code scafferrors.ErrorCode) {
	switch code {
	case scafferrors.ConfigurationErrorCode:
		fmt.Fprintf(os.Stderr, "Behavior Configuration Requirements:\n")
		fmt.Fprintf(os.Stderr, "  - Every synthesized type needs a behavior block with display_name_plural\n")
		fmt.Fprintf(os.Stderr, "  - Exactly one field must carry the %s annotation\n", "scaffold::id")
		fmt.Fprintf(os.Stderr, "  - An empty method name disables that operation (count cannot be disabled)\n\n")
	case scafferrors.ContractMismatchErrorCode:
		fmt.Fprintf(os.Stderr, "Resolving Contract Mismatches:\n")
		fmt.Fprintf(os.Stderr, "  - A user method sharing a generated name and signature must match its return type\n")
		fmt.Fprintf(os.Stderr, "  - Rename the method, change its return type, or disable the operation\n\n")
	case scafferrors.SnapshotErrorCode:
		fmt.Fprintf(os.Stderr, "Snapshot Requirements:\n")
		fmt.Fprintf(os.Stderr, "  - source_path and at least one type entry are required\n")
		fmt.Fprintf(os.Stderr, "  - Type expressions look like example.com/app.Pet or []pkg.Name[P]\n\n")
	}

	fmt.Fprintf(os.Stderr, "For more help:\n")
	fmt.Fprintf(os.Stderr, "  - Run with --verbose for more detailed output\n")
	fmt.Fprintf(os.Stderr, "  - Review the snapshot examples in the README\n")
}

// formatContextKey converts snake_case context keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// ReportSuccess reports a completed run with summary information
func (r *DiagnosticReporter) ReportSuccess(report *RunReport) {
	if r.quiet {
		return
	}

	ok := color.New(color.FgGreen, color.Bold)
	ok.Printf("\nMember Synthesis Completed Successfully!\n")
	fmt.Printf("========================================\n\n")

	fmt.Printf("Processed %d type structures\n", report.TypesProcessed)
	fmt.Printf("Synthesized members for %d type(s)\n", len(report.Synthesized))

	members := 0
	for _, tr := range report.Synthesized {
		members += len(tr.Methods)
		if tr.HandleField != nil {
			members++
		}
	}
	fmt.Printf("Produced %d new member(s)\n", members)

	if r.verbose {
		fmt.Printf("\nFull result dump:\n")
		spew.Fdump(os.Stdout, report.Synthesized)
	}
}
