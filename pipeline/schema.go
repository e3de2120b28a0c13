package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/aluiziolira/cinesent/models"
)

// ReportSchema returns the JSON Schema of a JSON export, indented.
func ReportSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&models.Report{})
	schema.Title = "cinesent report"

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report schema: %w", err)
	}
	return out, nil
}
