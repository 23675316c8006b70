package schema

import (
	"fmt"
	"time"
)

// TimestampLayout is the wire layout for every timestamp the service emits.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a second-resolution time rendered as "YYYY-MM-DD HH:MM:SS".
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

func (t Timestamp) String() string { return t.Format(TimestampLayout) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.Format(TimestampLayout))), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string, got %s", s)
	}
	parsed, err := time.ParseInLocation(TimestampLayout, s[1:len(s)-1], time.Local)
	if err != nil {
		return fmt.Errorf("parsing timestamp: %w", err)
	}
	t.Time = parsed
	return nil
}

// Priority classifies a requirement and every test case derived from it.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
)

// IsValidPriority reports whether p is one of the two defined priorities.
func IsValidPriority(p Priority) bool {
	return p == PriorityHigh || p == PriorityMedium
}

// UploadedDocument is the metadata kept for every accepted upload.
// Content is the raw decoded text.
type UploadedDocument struct {
	ID                string    `json:"id"`
	Filename          string    `json:"filename"`
	UploadDate        Timestamp `json:"upload_date"`
	Content           string    `json:"content"`
	ContentHash       string    `json:"content_hash"` // "sha256:<hex>"
	SizeBytes         int       `json:"size_bytes"`
	Processed         bool      `json:"processed"`
	RequirementsCount int       `json:"requirements_count"`
	TestCasesCount    int       `json:"test_cases_count"`
}

// Requirement is a sentence fragment believed to express an obligation.
// Requirements are never stored; they live for one pipeline run.
type Requirement struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// TestCase is a templated verification scenario derived from one requirement.
type TestCase struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Steps          []string  `json:"steps"`
	ExpectedResult string    `json:"expected_result"`
	Priority       Priority  `json:"priority"`
	ComplianceTags []string  `json:"compliance_tags"`
	RequirementID  string    `json:"requirement_id"`
	CreatedDate    Timestamp `json:"created_date"`
}

// StandardCoverage counts tag mentions for one standard and lists the
// contributing test cases in batch order.
type StandardCoverage struct {
	Count     int      `json:"count"`
	TestCases []string `json:"test_cases"`
}

// ComplianceReport summarizes tag coverage for a single upload batch.
type ComplianceReport struct {
	ID                 string                       `json:"id"`
	GeneratedDate      Timestamp                    `json:"generated_date"`
	TotalTestCases     int                          `json:"total_test_cases"`
	ComplianceCoverage map[string]*StandardCoverage `json:"compliance_coverage"`
	ComplianceScore    float64                      `json:"compliance_score"`
}

// Suite bundles one derivation run for rendering.
type Suite struct {
	Source       string            `json:"source"`
	Requirements []Requirement     `json:"requirements"`
	TestCases    []TestCase        `json:"test_cases"`
	Report       *ComplianceReport `json:"report"`
}
