// internal/workers/intelligence/rank-providers/validation.go
package rankproviders

import "enrichment-workers/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["operation"],
  "properties": {
    "industry": {"type": "string"},
    "operation": {
      "type": "string",
      "enum": ["company_search", "company_enrich", "people_search", "people_enrich", "email_find", "email_verify"]
    },
    "availableProviders": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "uniqueItems": true
    },
    "registeredOnly": {"type": "boolean"}
  }
}`)
