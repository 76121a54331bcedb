// internal/workers/enrichment/enrich-person/validation.go
package enrichperson

import "enrichment-workers/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["clientId"],
  "anyOf": [
    {"required": ["email"]},
    {"required": ["linkedinUrl"]},
    {"required": ["firstName", "lastName", "companyDomain"]}
  ],
  "properties": {
    "clientId": {"type": "string", "minLength": 1},
    "email": {"type": "string", "pattern": "^[^@\\s]+@[^@\\s]+$"},
    "linkedinUrl": {"type": "string", "minLength": 1},
    "firstName": {"type": "string", "minLength": 1, "maxLength": 100},
    "lastName": {"type": "string", "minLength": 1, "maxLength": 100},
    "companyDomain": {"type": "string", "minLength": 1, "maxLength": 253},
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
