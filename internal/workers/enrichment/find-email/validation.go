// internal/workers/enrichment/find-email/validation.go
package findemail

import "enrichment-workers/internal/common/validation"

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["clientId", "companyDomain"],
  "anyOf": [
    {"required": ["firstName"]},
    {"required": ["lastName"]}
  ],
  "properties": {
    "clientId": {"type": "string", "minLength": 1},
    "firstName": {"type": "string", "minLength": 1, "maxLength": 100},
    "lastName": {"type": "string", "minLength": 1, "maxLength": 100},
    "companyDomain": {"type": "string", "minLength": 1, "maxLength": 253}
  }
}`)
