// internal/workers/enrichment/enrich-company/validation.go
package enrichcompany

import "enrichment-workers/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["clientId"],
  "anyOf": [
    {"required": ["domain"]},
    {"required": ["name"]}
  ],
  "properties": {
    "clientId": {"type": "string", "minLength": 1},
    "domain": {"type": "string", "minLength": 1, "maxLength": 253},
    "name": {"type": "string", "minLength": 1, "maxLength": 255},
    "waterfall": {
      "type": "object",
      "properties": {
        "qualityThreshold": {"type": "number", "minimum": 0, "maximum": 1},
        "maxProviders": {"type": "integer", "minimum": 1},
        "requiredFields": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`)
