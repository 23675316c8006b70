package generate

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/genesisqa/internal/compliance"
	"github.com/dshills/genesisqa/internal/schema"
)

// casesPerRequirement is fixed; only the first two templates are reachable.
const casesPerRequirement = 2

// stepExcerptLen is the number of runes of requirement text quoted in step 2.
const stepExcerptLen = 50

var templates = []string{
	"Verify that {requirement}",
	"Test that the system {requirement}",
	"Validate that {requirement}",
	"Ensure that {requirement}",
}

// Generator expands requirements into templated test cases.
type Generator struct {
	seq Sequence
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New returns a Generator numbering test cases from seq.
func New(seq Sequence, opts ...Option) *Generator {
	g := &Generator{seq: seq, now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

// TestCases returns exactly two test cases per requirement, in requirement
// order.
func (g *Generator) TestCases(reqs []schema.Requirement) []schema.TestCase {
	out := make([]schema.TestCase, 0, len(reqs)*casesPerRequirement)
	for _, req := range reqs {
		tags := compliance.Tags(req.Text)
		for i := 0; i < casesPerRequirement; i++ {
			out = append(out, schema.TestCase{
				ID:             fmt.Sprintf("TC-%03d", g.seq.Next()),
				Title:          fmt.Sprintf("Test Case for %s", req.ID),
				Description:    describe(i, req.Text),
				Steps:          steps(req.Text),
				ExpectedResult: fmt.Sprintf("System should comply with %s", req.ID),
				Priority:       req.Priority,
				ComplianceTags: append([]string(nil), tags...),
				RequirementID:  req.ID,
				CreatedDate:    schema.NewTimestamp(g.now()),
			})
		}
	}
	return out
}

func describe(i int, text string) string {
	tmpl := templates[i%len(templates)]
	return strings.Replace(tmpl, "{requirement}", strings.ToLower(text), 1)
}

func steps(text string) []string {
	return []string{
		"Step 1: Navigate to the relevant system component",
		fmt.Sprintf("Step 2: Execute the functionality related to: %s...", excerpt(text, stepExcerptLen)),
		"Step 3: Verify the expected behavior",
		"Step 4: Document the results",
	}
}

// excerpt returns at most n runes of s.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
