package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/genesisqa/internal/diff"
	"github.com/dshills/genesisqa/internal/document"
	"github.com/dshills/genesisqa/internal/generate"
	"github.com/dshills/genesisqa/internal/pipeline"
	"github.com/dshills/genesisqa/internal/render"
	"github.com/dshills/genesisqa/internal/report"
	"github.com/dshills/genesisqa/internal/schema"
	"github.com/dshills/genesisqa/internal/schema/validate"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// now is the clock for every timestamp the CLI produces.
var now = time.Now

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

type generateFlags struct {
	format  string
	out     string
	verbose bool
}

type diffFlags struct {
	out          string
	failOnChange bool
	verbose      bool
}

type reportFlags struct {
	format string
	out    string
}

func main() {
	root := &cobra.Command{
		Use:     "genesisqa",
		Short:   "Derive compliance-tagged test cases from requirements documents",
		Long:    "GenesisQA extracts requirement sentences from plain-text documents, generates templated test cases, tags them with compliance standards, and scores coverage.",
		Version: version,
	}
	root.SilenceUsage = true

	root.AddCommand(newServeCmd(), newGenerateCmd(), newDiffCmd(), newReportCmd())

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// cobra already printed the error
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate <file.txt>...",
		Short: "Generate a test plan from one or more requirements documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(args, flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.format, "format", "json", "Output format: json, md or csv")
	f.StringVar(&flags.out, "out", "", "Write output to file instead of stdout")
	f.BoolVar(&flags.verbose, "verbose", false, "Print processing steps to stderr")
	return cmd
}

func newDiffCmd() *cobra.Command {
	var flags diffFlags
	cmd := &cobra.Command{
		Use:   "diff <old.txt> <new.txt>",
		Short: "Show how the derived test plan changes between two document revisions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args[0], args[1], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.out, "out", "", "Write the patch to file instead of stdout")
	f.BoolVar(&flags.failOnChange, "fail-on-change", false, "Exit 2 if the derived plans differ")
	f.BoolVar(&flags.verbose, "verbose", false, "Print processing steps to stderr")
	return cmd
}

func newReportCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "report <export.json>",
		Short: "Rebuild a compliance report from an exported test-case list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.format, "format", "json", "Output format: json or md")
	f.StringVar(&flags.out, "out", "", "Write output to file instead of stdout")
	return cmd
}

func runGenerate(paths []string, flags generateFlags) error {
	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(3, "invalid flags: %s", err)
	}

	logVerbose(flags.verbose, "Loading %d document(s)", len(paths))
	docs, err := document.LoadAll(paths)
	if err != nil {
		return codeError(3, "loading documents: %s", err)
	}

	suite := buildSuite(docs, now())
	logVerbose(flags.verbose, "Derived %d requirement(s), %d test case(s), score %.1f",
		len(suite.Requirements), len(suite.TestCases), suite.Report.ComplianceScore)

	logVerbose(flags.verbose, "Rendering output (format: %s)", flags.format)
	out, err := renderer.Render(suite)
	if err != nil {
		return codeError(3, "rendering output: %s", err)
	}
	return writeOutput(flags.out, out)
}

// buildSuite derives one plan across docs. Documents share a single
// counter, so test-case ids run across files the way successive uploads
// do. Requirement ids restart per document.
func buildSuite(docs []*document.Document, at time.Time) *schema.Suite {
	seq := generate.NewCounter(0)
	suite := &schema.Suite{
		Requirements: []schema.Requirement{},
		TestCases:    []schema.TestCase{},
	}
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		part := pipeline.Preview(d.Filename, d.Text, seq, at)
		suite.Requirements = append(suite.Requirements, part.Requirements...)
		suite.TestCases = append(suite.TestCases, part.TestCases...)
		names = append(names, d.Filename)
	}
	suite.Source = strings.Join(names, ", ")
	suite.Report = report.Build(suite.TestCases, at)
	return suite
}

func runDiff(oldPath, newPath string, flags diffFlags) error {
	logVerbose(flags.verbose, "Loading revisions: %s, %s", oldPath, newPath)
	docs, err := document.LoadAll([]string{oldPath, newPath})
	if err != nil {
		return codeError(3, "loading documents: %s", err)
	}

	at := now()
	before := pipeline.Preview(docs[0].Filename, docs[0].Text, generate.NewCounter(0), at)
	after := pipeline.Preview(docs[1].Filename, docs[1].Text, generate.NewCounter(0), at)

	res := diff.Plans(before, after)
	logVerbose(flags.verbose, "Plan lines: +%d -%d", res.Added, res.Removed)

	if res.Changed {
		if err := writeOutput(flags.out, []byte(res.Patch)); err != nil {
			return err
		}
	} else {
		logVerbose(flags.verbose, "Derived plans are identical")
	}

	if flags.failOnChange && res.Changed {
		return codeError(2, "derived test plan changed: %d line(s) added, %d removed", res.Added, res.Removed)
	}
	return nil
}

func runReport(path string, flags reportFlags) error {
	switch flags.format {
	case "json", "md":
	default:
		return codeError(3, "invalid flags: --format must be json or md, got %q", flags.format)
	}
	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(3, "invalid flags: %s", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return codeError(3, "reading export: %s", err)
	}
	cases, err := validate.ParseTestCases(string(raw))
	if err != nil {
		return codeError(3, "invalid export %s: %s", path, err)
	}

	suite := &schema.Suite{
		Source:       path,
		Requirements: []schema.Requirement{},
		TestCases:    cases,
		Report:       report.Build(cases, now()),
	}
	out, err := renderer.Render(suite)
	if err != nil {
		return codeError(3, "rendering output: %s", err)
	}
	return writeOutput(flags.out, out)
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return codeError(4, "writing output file: %s", err)
		}
		return nil
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return codeError(4, "writing output: %s", err)
	}
	// Ensure output ends with a newline for terminal friendliness.
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

// logVerbose writes a message to stderr when verbose mode is enabled.
func logVerbose(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "INFO: "+format+"\n", args...)
	}
}
