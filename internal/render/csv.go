package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/dshills/genesisqa/internal/schema"
)

var csvHeader = []string{"ID", "Title", "Description", "Priority", "Expected Result", "Compliance Tags", "Created Date"}

// csvRenderer emits only the suite's test cases, one row each.
type csvRenderer struct{}

func (r *csvRenderer) Render(suite *schema.Suite) ([]byte, error) {
	return TestCasesCSV(suite.TestCases)
}

// TestCasesCSV writes cases with the export column set. Tags are joined
// with "; ".
func TestCasesCSV(cases []schema.TestCase) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, tc := range cases {
		row := []string{
			tc.ID,
			tc.Title,
			tc.Description,
			string(tc.Priority),
			tc.ExpectedResult,
			strings.Join(tc.ComplianceTags, "; "),
			tc.CreatedDate.String(),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row %s: %w", tc.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}
