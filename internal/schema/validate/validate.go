package validate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/genesisqa/internal/compliance"
	"github.com/dshills/genesisqa/internal/schema"
)

var (
	testCaseIDPattern    = regexp.MustCompile(`^TC-\d{3,}$`)
	requirementIDPattern = regexp.MustCompile(`^REQ-\d{3,}$`)
)

// ParseTestCases strips markdown fences, unmarshals a JSON array of test
// cases as served by the test-case endpoint, and validates every entry.
func ParseTestCases(raw string) ([]schema.TestCase, error) {
	cleaned := stripFences(raw)

	var cases []schema.TestCase
	if err := json.Unmarshal([]byte(cleaned), &cases); err != nil {
		return nil, fmt.Errorf("JSON parse failed: %w", err)
	}

	seen := make(map[string]bool, len(cases))
	for i, tc := range cases {
		if err := validateTestCase(tc, i); err != nil {
			return nil, err
		}
		if seen[tc.ID] {
			return nil, fmt.Errorf("test_case[%d]: duplicate id %q", i, tc.ID)
		}
		seen[tc.ID] = true
	}
	return cases, nil
}

// stripFences removes leading/trailing markdown code fences (```json ... ``` or ``` ... ```).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		if idx := strings.LastIndex(s, "\n```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

func validateTestCase(tc schema.TestCase, idx int) error {
	prefix := fmt.Sprintf("test_case[%d]", idx)

	if !testCaseIDPattern.MatchString(tc.ID) {
		return fmt.Errorf("%s: id %q does not match TC-NNN format", prefix, tc.ID)
	}
	if !requirementIDPattern.MatchString(tc.RequirementID) {
		return fmt.Errorf("%s: requirement_id %q does not match REQ-NNN format", prefix, tc.RequirementID)
	}
	if !schema.IsValidPriority(tc.Priority) {
		return fmt.Errorf("%s: invalid priority %q (must be High or Medium)", prefix, tc.Priority)
	}
	if tc.Title == "" {
		return fmt.Errorf("%s: title is required", prefix)
	}
	if len(tc.ComplianceTags) == 0 {
		return fmt.Errorf("%s: compliance_tags must not be empty", prefix)
	}
	for _, tag := range tc.ComplianceTags {
		if !compliance.Known(tag) {
			return fmt.Errorf("%s: unknown compliance tag %q", prefix, tag)
		}
	}
	return nil
}
