package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/dshills/genesisqa/internal/schema"
)

type markdownRenderer struct{}

var mdTemplate = template.Must(template.New("suite").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`# GenesisQA Test Plan
{{ if .Source }}
**Source:** {{ .Source }}
{{ end }}
**Requirements:** {{ len .Requirements }} | **Test cases:** {{ len .TestCases }}{{ with .Report }} | **Compliance score:** {{ printf "%.1f" .ComplianceScore }}/100{{ end }}
{{ if .Requirements }}
---

## Requirements
{{ range .Requirements }}
- **{{ .ID }}** ({{ .Priority }}): {{ .Text }}
{{- end }}
{{ end }}{{ if .TestCases }}
---

## Test Cases
{{ range .TestCases }}
### {{ .ID }} · {{ .Title }} · {{ .Priority }}
{{ .Description }}
{{ range .Steps }}
1. {{ . }}
{{- end }}

**Expected:** {{ .ExpectedResult }}
**Compliance:** {{ join .ComplianceTags ", " }}
{{ end }}{{ end }}{{ with .Report }}{{ if .ComplianceCoverage }}
---

## Compliance Coverage

| Standard | Mentions | Test cases |
|---|---|---|
{{- range $name, $cov := .ComplianceCoverage }}
| {{ $name }} | {{ $cov.Count }} | {{ join $cov.TestCases ", " }} |
{{- end }}
{{ end }}
*Report {{ .ID }} generated {{ .GeneratedDate }}*
{{ end }}`))

func (r *markdownRenderer) Render(suite *schema.Suite) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, suite); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}
