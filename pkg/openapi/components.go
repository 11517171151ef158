package openapi

import "maps"

// NewComponents creates Components with shared schemas and error responses.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":     {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"pageSize": {Type: "integer", Description: "Results per page", Example: 10},
					"search":   {Type: "string", Description: "Search query"},
					"sort":     {Type: "string", Description: "Comma-separated sort fields. Prefix with - for descending. Example: batchId,-createdAt"},
				},
			},
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":      ErrorResponse("Invalid request"),
			"Unauthorized":    ErrorResponse("Authentication required"),
			"NotFound":        ErrorResponse("Resource not found"),
			"Conflict":        ErrorResponse("Record was modified concurrently"),
			"RequestTimeout":  ErrorResponse("Upstream request timed out"),
			"TooManyRequests": ErrorResponse("Upstream rate limit exceeded"),
			"InternalError":   ErrorResponse("Internal server error"),
		},
	}
}

// ErrorResponse creates a JSON response carrying the shared Error schema.
func ErrorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
