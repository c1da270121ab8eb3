package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type SessionRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

type SaveRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Edits     Edits  `json:"edits" validate:"required"`
}

type ExportRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Filename  string `json:"filename" validate:"max=255"`
}

type UpdateFieldRequest struct {
	SessionID  string `json:"session_id" validate:"required,uuid"`
	FieldName  string `json:"field_name" validate:"required"`
	FieldValue string `json:"field_value"`
}

// Validate checks req against its struct tags. Failures wrap ErrValidation
// and name the offending JSON fields.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := jsonName(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "uuid":
		return name + " must be a valid UUID"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

var jsonNames = map[string]string{
	"SessionID":  "session_id",
	"Edits":      "edits",
	"Filename":   "filename",
	"FieldName":  "field_name",
	"FieldValue": "field_value",
}

func jsonName(field string) string {
	if n, ok := jsonNames[field]; ok {
		return n
	}
	return field
}

// ParseSessionID parses a validated session id.
func ParseSessionID(s string) (uuid.UUID, error) {
	if err := Validate(SessionRequest{SessionID: s}); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: session_id must be a valid UUID", ErrValidation)
	}
	return id, nil
}
