package report

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/genesisqa/internal/schema"
)

const (
	pointsPerStandard = 20
	pointsPerMention  = 2
	maxScore          = 100
)

// Build aggregates one upload batch into a compliance report. A test case
// with N tags contributes one mention to each of N standards, so coverage
// counts can sum past TotalTestCases.
func Build(batch []schema.TestCase, at time.Time) *schema.ComplianceReport {
	coverage := Coverage(batch)
	return &schema.ComplianceReport{
		ID:                 uuid.New().String(),
		GeneratedDate:      schema.NewTimestamp(at),
		TotalTestCases:     len(batch),
		ComplianceCoverage: coverage,
		ComplianceScore:    Score(coverage),
	}
}

// Coverage maps each standard to its mention count and contributing ids.
// A case carrying a tag twice is listed twice.
func Coverage(batch []schema.TestCase) map[string]*schema.StandardCoverage {
	stats := make(map[string]*schema.StandardCoverage)
	for _, tc := range batch {
		for _, tag := range tc.ComplianceTags {
			s, ok := stats[tag]
			if !ok {
				s = &schema.StandardCoverage{TestCases: []string{}}
				stats[tag] = s
			}
			s.Count++
			s.TestCases = append(s.TestCases, tc.ID)
		}
	}
	return stats
}

// Score computes min(100, standards*20 + mentions*2) rounded to one decimal.
// An empty coverage map scores 0. The score is not normalized by batch size,
// so large batches saturate at 100.
func Score(coverage map[string]*schema.StandardCoverage) float64 {
	if len(coverage) == 0 {
		return 0
	}
	raw := float64(len(coverage)*pointsPerStandard + Mentions(coverage)*pointsPerMention)
	return math.Round(math.Min(maxScore, raw)*10) / 10
}

// Mentions returns the sum of all standard counts.
func Mentions(coverage map[string]*schema.StandardCoverage) int {
	total := 0
	for _, s := range coverage {
		total += s.Count
	}
	return total
}

// FilterByTag returns the test cases carrying tag, preserving order.
// An empty tag returns cases unchanged.
func FilterByTag(cases []schema.TestCase, tag string) []schema.TestCase {
	if tag == "" {
		return cases
	}
	out := make([]schema.TestCase, 0, len(cases))
	for _, tc := range cases {
		if hasTag(tc, tag) {
			out = append(out, tc)
		}
	}
	return out
}

func hasTag(tc schema.TestCase, tag string) bool {
	for _, t := range tc.ComplianceTags {
		if t == tag {
			return true
		}
	}
	return false
}
