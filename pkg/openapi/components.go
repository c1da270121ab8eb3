package openapi

// NewComponents returns the schemas and responses shared by every endpoint.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
				Required: []string{"error"},
			},
			"Message": {
				Type: "object",
				Properties: map[string]*Schema{
					"success": {Type: "boolean"},
					"message": {Type: "string"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":      ResponseJSON("Invalid request", "Error"),
			"NotFound":        ResponseJSON("Resource not found", "Error"),
			"PayloadTooLarge": ResponseJSON("Upload exceeds the configured size limit", "Error"),
			"InternalError":   ResponseJSON("PDF processing failed", "Error"),
		},
	}
}

// AddSchemas merges schemas into the components. Existing names are replaced.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	for name, schema := range schemas {
		c.Schemas[name] = schema
	}
}

func (c *Components) AddResponses(responses map[string]*Response) {
	for name, response := range responses {
		c.Responses[name] = response
	}
}
