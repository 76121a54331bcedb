// internal/workers/enrichment/search-people/validation.go
package searchpeople

import "enrichment-workers/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["clientId"],
  "anyOf": [
    {"required": ["companyDomain"]},
    {"required": ["companyName"]}
  ],
  "properties": {
    "clientId": {"type": "string", "minLength": 1},
    "companyDomain": {"type": "string", "minLength": 1},
    "companyName": {"type": "string", "minLength": 1},
    "titles": {"type": "array", "items": {"type": "string"}},
    "seniorities": {"type": "array", "items": {"type": "string"}},
    "departments": {"type": "array", "items": {"type": "string"}},
    "limit": {"type": "integer", "minimum": 0, "maximum": 100},
    "cursor": {"type": "string"}
  }
}`)
