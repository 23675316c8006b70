package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/genesisqa/internal/schema"
)

// Result is the comparison of two derived test plans.
type Result struct {
	Changed bool
	Added   int // plan lines only in the new revision
	Removed int // plan lines only in the old revision
	Patch   string
}

// Plans compares the test plans derived from two revisions of a document.
// Each plan is listed one test case per line, keyed by requirement id
// rather than test-case id so renumbering alone is not a change. The patch
// is in diff-match-patch text format.
func Plans(oldSuite, newSuite *schema.Suite) Result {
	before := Listing(oldSuite)
	after := Listing(newSuite)
	if before == after {
		return Result{}
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	res := Result{Changed: true}
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			res.Added += n
		case diffmatchpatch.DiffDelete:
			res.Removed += n
		}
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("# plan diff %s -> %s\n", oldSuite.Source, newSuite.Source))
	out.WriteString(dmp.PatchToText(dmp.PatchMake(before, diffs)))
	res.Patch = out.String()
	return res
}

// Listing renders a suite's test cases as stable, newline-terminated lines.
func Listing(suite *schema.Suite) string {
	if suite == nil {
		return ""
	}
	var sb strings.Builder
	for _, tc := range suite.TestCases {
		sb.WriteString(fmt.Sprintf("%s [%s] %s {%s}\n",
			tc.RequirementID, tc.Priority, tc.Description, strings.Join(tc.ComplianceTags, ",")))
	}
	return sb.String()
}
