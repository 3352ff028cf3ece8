package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/toyz/scaffold/internal/cli"
)

func main() {
	// Define command-line flags
	var (
		outFlag     = flag.String("out", "", "Write the synthesis report to this file (defaults to stdout)")
		verboseFlag = flag.Bool("verbose", false, "Enable verbose output and detailed error reporting")
		quietFlag   = flag.Bool("quiet", false, "Only show errors and the report")
		helpFlag    = flag.Bool("help", false, "Show help information")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <snapshot-file>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Scaffold Member Synthesizer\n")
		fmt.Fprintf(os.Stderr, "Reads a type-structure snapshot, synthesizes storage lifecycle and query members\n")
		fmt.Fprintf(os.Stderr, "for every behavior-carrying type, and emits a JSON report of the new members.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nArguments:\n")
		fmt.Fprintf(os.Stderr, "  snapshot-file      JSON snapshot of the declared type structures to process\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s snapshot.json                   # Synthesize and print the report\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --out report.json snapshot.json # Write the report to a file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --verbose snapshot.json         # Enable detailed output\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --quiet snapshot.json           # Report only\n", os.Args[0])
	}

	flag.Parse()

	// Show help if requested
	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	// Validate arguments
	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Error: Exactly one snapshot file is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	reporter := cli.NewDiagnosticReporter(*verboseFlag, *quietFlag)

	snap, err := cli.LoadSnapshot(args[0])
	if err != nil {
		reporter.ReportError(err)
		os.Exit(1)
	}
	reporter.Debug("snapshot %s declares %d types under %s", args[0], len(snap.Types), snap.SourcePath)

	engine := cli.NewEngine(reporter)
	report, runErr := engine.Run(snap)
	if report == nil {
		reporter.ReportError(runErr)
		os.Exit(1)
	}
	if runErr != nil {
		// Per-type failures never block siblings; report them but still
		// emit what was synthesized.
		reporter.ReportError(runErr)
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		reporter.ReportError(err)
		os.Exit(1)
	}
	if *outFlag != "" {
		if err := os.WriteFile(*outFlag, encoded, 0o644); err != nil {
			reporter.ReportError(err)
			os.Exit(1)
		}
		reporter.Debug("report written to %s", *outFlag)
	} else {
		fmt.Println(string(encoded))
	}

	if runErr != nil {
		os.Exit(1)
	}
	reporter.ReportSuccess(report)
}
