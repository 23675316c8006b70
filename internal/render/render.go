package render

import (
	"fmt"

	"github.com/dshills/genesisqa/internal/schema"
)

// Renderer formats a Suite into bytes for output.
type Renderer interface {
	Render(suite *schema.Suite) ([]byte, error)
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "json" (default), "md", "csv".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "json":
		return &jsonRenderer{}, nil
	case "md":
		return &markdownRenderer{}, nil
	case "csv":
		return &csvRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are json, md, csv", format)
	}
}
