package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes and validates the body into out, writing the 400/413
// response itself. It returns false when the handler must stop.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large", nil)
		return false
	}

	RespondBadRequest(ctx, "Invalid request body", bindErrorDetails(err, out))
	return false
}

func bindErrorDetails(err error, out interface{}) interface{} {
	var (
		validationErrors validator.ValidationErrors
		syntaxError      *json.SyntaxError
		typeError        *json.UnmarshalTypeError
	)

	switch {
	case errors.Is(err, io.EOF):
		return gin.H{"json": "empty_body"}

	case errors.Is(err, order.ErrUnsupportedVersion):
		// readyPupsVersion that is not a number at all; unknown numbers are a 422 later
		return typeMismatch("readyPupsVersion", "must be a number")

	case errors.As(err, &validationErrors):
		root := requestType(out)
		fields := make([]FieldError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, FieldError{
				Field:   jsonFieldName(root, fe.StructField()),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
		}
		return gin.H{"fields": fields}

	case errors.As(err, &syntaxError):
		return gin.H{"json": "invalid_json_syntax"}

	case errors.As(err, &typeError):
		// encoding/json reports the JSON key path already
		return typeMismatch(strings.TrimSpace(typeError.Field), "must be of type "+typeError.Type.String())

	default:
		return gin.H{"reason": err.Error()}
	}
}

func typeMismatch(field, message string) gin.H {
	return gin.H{
		"json":  "invalid_json_type",
		"field": field,
		"fields": []FieldError{
			{Field: field, Rule: "type", Message: message},
		},
	}
}

func requestType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// jsonFieldName maps a Go field name to its json tag so clients see the
// names they sent. Request bodies here are flat structs.
func jsonFieldName(root reflect.Type, goName string) string {
	if root == nil {
		return goName
	}

	sf, ok := root.FieldByName(goName)
	if !ok {
		return goName
	}

	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return goName
	}
	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "gte":
		return "must be greater than or equal to " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
