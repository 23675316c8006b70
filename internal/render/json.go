package render

import (
	"encoding/json"

	"github.com/dshills/genesisqa/internal/schema"
)

type jsonRenderer struct{}

func (r *jsonRenderer) Render(suite *schema.Suite) ([]byte, error) {
	return json.MarshalIndent(suite, "", "  ")
}
