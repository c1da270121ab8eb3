package documents

import "github.com/JaimeStill/pdf-editor/pkg/openapi"

type spec struct {
	FormFields *openapi.Operation
	FillForm   *openapi.Operation
	Merge      *openapi.Operation
	Split      *openapi.Operation
	Info       *openapi.Operation
	Encrypt    *openapi.Operation
	Decrypt    *openapi.Operation
	Rotate     *openapi.Operation
}

func upload(extra map[string]*openapi.Schema, required ...string) *openapi.RequestBody {
	props := map[string]*openapi.Schema{
		"pdf_file": openapi.BinaryField("PDF document"),
	}
	for name, s := range extra {
		props[name] = s
	}
	return openapi.RequestBodyMultipart(&openapi.Schema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"pdf_file"}, required...),
	})
}

func failures(resp map[int]*openapi.Response) map[int]*openapi.Response {
	resp[400] = openapi.ResponseRef("BadRequest")
	resp[413] = openapi.ResponseRef("PayloadTooLarge")
	resp[500] = openapi.ResponseRef("InternalError")
	return resp
}

var Spec = spec{
	FormFields: &openapi.Operation{
		Summary:     "Extract form fields",
		Description: "List the AcroForm fields of an uploaded PDF",
		RequestBody: upload(nil),
		Responses: failures(map[int]*openapi.Response{
			200: openapi.ResponseJSON("Form fields", "FormFieldsResult"),
		}),
	},
	FillForm: &openapi.Operation{
		Summary:     "Fill form",
		Description: "Fill form fields from form_data (a JSON object, or form_data[name] fields) and download the result",
		RequestBody: upload(map[string]*openapi.Schema{
			formDataField: {Type: "string", Description: "JSON object of field name to value"},
		}),
		Responses: failures(map[int]*openapi.Response{
			200: openapi.ResponseBinary("Filled document", pdfContentType),
		}),
	},
	Merge: &openapi.Operation{
		Summary:     "Merge documents",
		Description: "Concatenate two or more PDFs in upload order",
		RequestBody: openapi.RequestBodyMultipart(&openapi.Schema{
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"pdf_files": {Type: "array", Items: openapi.BinaryField("PDF document")},
			},
			Required: []string{"pdf_files"},
		}),
		Responses: failures(map[int]*openapi.Response{
			200: openapi.ResponseBinary("Merged document", pdfContentType),
		}),
	},
	Split: &openapi.Operation{
		Summary:     "Split document",
		Description: "Burst a PDF into single pages returned as a zip archive",
		RequestBody: upload(nil),
		Responses: failures(map[int]*openapi.Response{
			200: openapi.ResponseBinary("Zip of page_NN.pdf files", zipContentType),
		}),
	},
	Info: &openapi.Operation{
		Summary:     "Document information",
		Description: "Read document metadata keys as reported by the toolkit",
		RequestBody: upload(nil),
		Responses: failures(map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document information", "InfoResult"),
		}),
	},
	Encrypt: &openapi.Operation{
		Summary:     "Encrypt document",
		Description: "Apply 128-bit encryption with a user password and optional owner password",
		RequestBody: upload(map[string]*openapi.Schema{
			"user_password":  {Type: "string"},
			"owner_password": {Type: "string"},
		}, "user_password"),
		Responses: failures(map[int]*openapi.Response{
			200: openapi.ResponseBinary("Encrypted document", pdfContentType),
		}),
	},
	Decrypt: &openapi.Operation{
		Summary:     "Decrypt document",
		Description: "Remove encryption using the given password",
		RequestBody: upload(map[string]*openapi.Schema{
			"password": {Type: "string"},
		}, "password"),
		Responses: failures(map[int]*openapi.Response{
			200: openapi.ResponseBinary("Decrypted document", pdfContentType),
		}),
	},
	Rotate: &openapi.Operation{
		Summary:     "Rotate pages",
		Description: "Rotate all pages, or a pdftk page range such as 1-3 or 2-end",
		RequestBody: upload(map[string]*openapi.Schema{
			"rotation": {
				Type: "string",
				Enum: []string{"0", "90", "180", "270", "north", "east", "south", "west", "left", "right", "down"},
			},
			"pages": {Type: "string", Description: "Page range; defaults to every page"},
		}, "rotation"),
		Responses: failures(map[int]*openapi.Response{
			200: openapi.ResponseBinary("Rotated document", pdfContentType),
		}),
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"FormField": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"name":    {Type: "string"},
				"type":    {Type: "string", Example: "Text"},
				"value":   {Type: "string"},
				"options": {Type: "array", Items: &openapi.Schema{Type: "string"}},
			},
		},
		"FormFieldsResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
				"fields":  {Type: "array", Items: openapi.SchemaRef("FormField")},
				"message": {Type: "string"},
			},
		},
		"InfoResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
				"info": {
					Type:                 "object",
					AdditionalProperties: &openapi.Schema{Type: "string"},
				},
				"message": {Type: "string"},
			},
		},
	}
}
