package editor

import (
	"encoding/json"
	"fmt"
	"time"
)

// Edit type tags used in the persisted {type, ...} envelope.
const (
	TypeFormField      = "form_field"
	TypeTextAnnotation = "text_annotation"
	TypeShape          = "shape"
)

// Edit is one operation layered over a session's base document.
// The set of implementations is closed: FormFieldEdit, TextAnnotationEdit,
// ShapeEdit and UnknownEdit.
type Edit interface {
	EditType() string
	isEdit()
}

// Layout positions a visual edit on a page in PDF user space.
type Layout struct {
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color,omitempty"`
}

type FormFieldEdit struct {
	FieldName string    `json:"field_name"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

type TextAnnotationEdit struct {
	Layout
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type ShapeEdit struct {
	Layout
	Shape     string    `json:"shape"`
	Timestamp time.Time `json:"timestamp"`
}

// UnknownEdit keeps an edit with an unrecognized type tag so it survives a
// load/save round trip unchanged.
type UnknownEdit struct {
	Type string
	Raw  json.RawMessage
}

func (FormFieldEdit) EditType() string      { return TypeFormField }
func (TextAnnotationEdit) EditType() string { return TypeTextAnnotation }
func (ShapeEdit) EditType() string          { return TypeShape }
func (e UnknownEdit) EditType() string      { return e.Type }

func (FormFieldEdit) isEdit()      {}
func (TextAnnotationEdit) isEdit() {}
func (ShapeEdit) isEdit()          {}
func (UnknownEdit) isEdit()        {}

// Edits is the ordered edit list of a session.
type Edits []Edit

type envelope struct {
	Type string `json:"type"`
}

func (e Edits) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(e))
	for i, edit := range e {
		raw, err := marshalEdit(edit)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func (e *Edits) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	edits := make(Edits, 0, len(raws))
	for i, raw := range raws {
		edit, err := unmarshalEdit(raw)
		if err != nil {
			return fmt.Errorf("edit %d: %w", i, err)
		}
		edits = append(edits, edit)
	}

	*e = edits
	return nil
}

func marshalEdit(edit Edit) ([]byte, error) {
	switch v := edit.(type) {
	case FormFieldEdit:
		return json.Marshal(struct {
			Type string `json:"type"`
			FormFieldEdit
		}{TypeFormField, v})
	case TextAnnotationEdit:
		return json.Marshal(struct {
			Type string `json:"type"`
			TextAnnotationEdit
		}{TypeTextAnnotation, v})
	case ShapeEdit:
		return json.Marshal(struct {
			Type string `json:"type"`
			ShapeEdit
		}{TypeShape, v})
	case UnknownEdit:
		if len(v.Raw) == 0 {
			return json.Marshal(envelope{Type: v.Type})
		}
		return v.Raw, nil
	default:
		return nil, fmt.Errorf("unsupported edit %T", edit)
	}
}

func unmarshalEdit(raw json.RawMessage) (Edit, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case TypeFormField:
		var v FormFieldEdit
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeTextAnnotation:
		var v TextAnnotationEdit
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeShape:
		var v ShapeEdit
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return UnknownEdit{Type: env.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

// Upsert sets the value of the form-field edit for field. An existing entry
// keeps its position; otherwise a new entry is appended.
func (e Edits) Upsert(field, value string, ts time.Time) Edits {
	for i, edit := range e {
		if ff, ok := edit.(FormFieldEdit); ok && ff.FieldName == field {
			ff.Value = value
			ff.Timestamp = ts
			e[i] = ff
			return e
		}
	}
	return append(e, FormFieldEdit{FieldName: field, Value: value, Timestamp: ts})
}

// Normalize collapses repeated form-field edits for the same field into the
// first occurrence carrying the last submitted value. Other edits keep
// their order.
func (e Edits) Normalize() Edits {
	out := make(Edits, 0, len(e))
	for _, edit := range e {
		if ff, ok := edit.(FormFieldEdit); ok {
			out = out.Upsert(ff.FieldName, ff.Value, ff.Timestamp)
			continue
		}
		out = append(out, edit)
	}
	return out
}

// FormValues returns the field values of all form-field edits.
func (e Edits) FormValues() map[string]string {
	values := make(map[string]string)
	for _, edit := range e {
		if ff, ok := edit.(FormFieldEdit); ok {
			values[ff.FieldName] = ff.Value
		}
	}
	return values
}
