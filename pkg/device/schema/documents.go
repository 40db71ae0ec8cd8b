package schema

import "encoding/json"

// DeviceList describes the GET /device/all response body. Every device must
// carry all six fields with their primitive types; extra fields are allowed.
var DeviceList = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["data"],
	"properties": {
		"data": {
			"type": "object",
			"required": ["devices"],
			"properties": {
				"devices": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["id", "name", "description", "status", "type", "value"],
						"properties": {
							"id": {"type": "integer"},
							"name": {"type": "string"},
							"description": {"type": "string"},
							"status": {"type": "boolean"},
							"type": {"type": "string"},
							"value": {"type": "number"}
						}
					}
				}
			}
		}
	}
}`)

// ToggleRequest describes the PATCH /device/{id} request body.
var ToggleRequest = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["status"],
	"properties": {
		"name": {"type": "string"},
		"status": {"type": "boolean"}
	}
}`)
