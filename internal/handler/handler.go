// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/everydog-league/api/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	msgValidationFailed = "Request validation failed"
	msgInternal         = "Internal Server Error"
)

// enumValue is implemented by the closed string types in model.
type enumValue interface {
	Valid() bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// enum accepts only the values a type's Valid method allows.
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enumValue)
		return ok && e.Valid()
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Status: status, Detail: detail})
}

func writeValidationError(w http.ResponseWriter, fields []model.FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{
		Status: http.StatusUnprocessableEntity,
		Detail: msgValidationFailed,
		Errors: fields,
	})
}

// writeInternal logs err against the request and answers 500.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// bind decodes the JSON body into dst and validates it. On failure the
// error response has already been written and bind returns false.
func bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeValidationError(w, []model.FieldError{decodeFieldError(err)})
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeValidationError(w, []model.FieldError{{Field: "body", Error: err.Error()}})
			return false
		}
		fields := make([]model.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, model.FieldError{Field: fe.Field(), Error: fieldMessage(fe)})
		}
		writeValidationError(w, fields)
		return false
	}
	return true
}

func decodeFieldError(err error) model.FieldError {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return model.FieldError{Field: "body", Error: "is required"}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return model.FieldError{Field: typeErr.Field, Error: "must be a " + jsonTypeName(typeErr.Type)}
	default:
		return model.FieldError{Field: "body", Error: "must be valid JSON"}
	}
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	case reflect.Slice:
		return "list"
	default:
		return "object"
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "enum":
		return fmt.Sprintf("%q is not a permitted value", fe.Value())
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
