package editor

import "github.com/JaimeStill/pdf-editor/pkg/openapi"

type spec struct {
	Load          *openapi.Operation
	Data          *openapi.Operation
	Save          *openapi.Operation
	Preview       *openapi.Operation
	Export        *openapi.Operation
	FormFields    *openapi.Operation
	UpdateField   *openapi.Operation
	DeleteSession *openapi.Operation
	Sessions      *openapi.Operation
	PageImage     *openapi.Operation
}

func sessionParam() *openapi.Parameter {
	return openapi.UUIDQueryParam("session_id", "Editing session ID", true)
}

var Spec = spec{
	Load: &openapi.Operation{
		Summary:     "Load document",
		Description: "Upload a PDF and open an editing session over it",
		RequestBody: openapi.RequestBodyMultipart(&openapi.Schema{
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"pdf_file": openapi.BinaryField("PDF document"),
			},
			Required: []string{"pdf_file"},
		}),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Session created", "LoadResult"),
			400: openapi.ResponseRef("BadRequest"),
			413: openapi.ResponseRef("PayloadTooLarge"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	Data: &openapi.Operation{
		Summary:     "Base document",
		Description: "Return the unedited document of a session",
		Parameters:  []*openapi.Parameter{sessionParam()},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseBinary("Base document", pdfContentType),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Save: &openapi.Operation{
		Summary:     "Save edits",
		Description: "Replace the edit list of a session and mark it saved",
		RequestBody: openapi.RequestBodyJSON("SaveRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Edits saved", "Message"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Preview: &openapi.Operation{
		Summary:     "Preview document",
		Description: "Apply the session's edits to a temporary copy and return it inline",
		Parameters:  []*openapi.Parameter{sessionParam()},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseBinary("Edited document", pdfContentType),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	Export: &openapi.Operation{
		Summary:     "Export document",
		Description: "Apply the session's edits and download the result",
		RequestBody: openapi.RequestBodyJSON("ExportRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseBinary("Edited document attachment", pdfContentType),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	FormFields: &openapi.Operation{
		Summary:     "Session form fields",
		Description: "List the form fields of the session's base document",
		Parameters:  []*openapi.Parameter{sessionParam()},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Form fields", "SessionFormFields"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	UpdateField: &openapi.Operation{
		Summary:     "Update form field",
		Description: "Set the pending value of one form field",
		RequestBody: openapi.RequestBodyJSON("UpdateFieldRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Field updated", "Message"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	DeleteSession: &openapi.Operation{
		Summary:     "Delete session",
		Description: "Remove a session and its base document. session_id is read from the JSON body or the query string.",
		Parameters: []*openapi.Parameter{
			openapi.UUIDQueryParam("session_id", "Editing session ID", false),
		},
		RequestBody: openapi.RequestBodyJSON("SessionRequest", false),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Session deleted", "Message"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Sessions: &openapi.Operation{
		Summary:     "List sessions",
		Description: "List stored sessions, most recently updated first",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Sessions", "SessionList"),
		},
	},
	PageImage: &openapi.Operation{
		Summary:     "Render page",
		Description: "Render one page of the session's base document to an image",
		Parameters: []*openapi.Parameter{
			sessionParam(),
			openapi.QueryParam("page", "integer", "1-based page number (default 1)", false),
			openapi.QueryParam("format", "string", "png or jpg (default png)", false),
			openapi.QueryParam("dpi", "integer", "Resolution between 72 and 600 (default 150)", false),
			openapi.QueryParam("quality", "integer", "JPEG quality between 1 and 100", false),
		},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Page image",
				Content: map[string]*openapi.MediaType{
					"image/png":  {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
					"image/jpeg": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
				},
			},
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	str := &openapi.Schema{Type: "string"}
	num := &openapi.Schema{Type: "number"}
	uuidStr := &openapi.Schema{Type: "string", Format: "uuid"}
	ts := &openapi.Schema{Type: "string", Format: "date-time"}

	return map[string]*openapi.Schema{
		"Edit": {
			Type:        "object",
			Description: "A pending edit. Unknown types are kept and skipped when applied.",
			Properties: map[string]*openapi.Schema{
				"type":       {Type: "string", Enum: []string{TypeFormField, TypeTextAnnotation, TypeShape}},
				"field_name": str,
				"value":      str,
				"text":       str,
				"shape":      str,
				"page":       {Type: "integer"},
				"x":          num,
				"y":          num,
				"width":      num,
				"height":     num,
				"color":      str,
				"timestamp":  ts,
			},
			Required: []string{"type"},
		},
		"SessionRequest": {
			Type:       "object",
			Properties: map[string]*openapi.Schema{"session_id": uuidStr},
			Required:   []string{"session_id"},
		},
		"SaveRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session_id": uuidStr,
				"edits":      {Type: "array", Items: openapi.SchemaRef("Edit")},
			},
			Required: []string{"session_id", "edits"},
		},
		"ExportRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session_id": uuidStr,
				"filename":   {Type: "string", Default: defaultExportName},
			},
			Required: []string{"session_id"},
		},
		"UpdateFieldRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session_id":  uuidStr,
				"field_name":  str,
				"field_value": str,
			},
			Required: []string{"session_id", "field_name"},
		},
		"RegionField": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":       str,
				"name":     str,
				"type":     str,
				"value":    str,
				"options":  {Type: "array", Items: str},
				"editable": {Type: "boolean"},
				"coordinates": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"x": num, "y": num, "width": num, "height": num,
						"page": {Type: "integer"},
					},
				},
			},
		},
		"LoadResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success":       {Type: "boolean"},
				"session_id":    uuidStr,
				"pdf_path":      str,
				"original_name": str,
				"page_count":    {Type: "integer"},
				"editable_regions": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"form_fields":  {Type: "array", Items: openapi.SchemaRef("RegionField")},
						"text_regions": {Type: "array", Items: &openapi.Schema{Type: "object"}},
						"metadata":     {Type: "object", AdditionalProperties: str},
					},
				},
				"backup_created": {Type: "boolean"},
				"message":        str,
			},
		},
		"SessionFormFields": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
				"fields":  {Type: "array", Items: openapi.SchemaRef("FormField")},
			},
		},
		"SessionSummary": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session_id": uuidStr,
				"pdf_path":   str,
				"timestamp":  ts,
				"edit_count": {Type: "integer"},
			},
		},
		"SessionList": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success":  {Type: "boolean"},
				"sessions": {Type: "array", Items: openapi.SchemaRef("SessionSummary")},
			},
		},
	}
}
