package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/deskbothq/deskbot/internal/types"
)

// Parse parses the request into the given struct.
// Supports JSON body and query parameters via `form:"name"` struct tags.
func Parse(r *http.Request, v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return nil
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}
		if formTag := typ.Field(i).Tag.Get("form"); formTag != "" {
			if queryVal := r.URL.Query().Get(formTag); queryVal != "" {
				setFieldValue(field, queryVal)
			}
		}
	}

	if r.Body != nil && r.ContentLength != 0 {
		contentType := r.Header.Get("Content-Type")
		if strings.HasPrefix(contentType, "application/json") || contentType == "" {
			if err := json.NewDecoder(r.Body).Decode(v); err != nil {
				return &types.ValidationError{Field: "body", Reason: err.Error()}
			}
		}
	}

	return nil
}

// setFieldValue sets a struct field value from a string
func setFieldValue(field reflect.Value, value string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			field.SetInt(i)
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(value); err == nil {
			field.SetBool(b)
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			field.SetFloat(f)
		}
	}
}

// OkJSON writes a JSON response with 200 OK status
func OkJSON(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the standard error envelope. Kind distinguishes the
// failure class so callers can branch without parsing messages.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
}

// Error maps a failure onto the wire envelope. Validation failures are the
// caller's fault (400); agent and automation failures are upstream faults
// (502); anything unclassified is a 500.
func Error(w http.ResponseWriter, err error) {
	var (
		ve *types.ValidationError
		ae *types.AutomationError
		ge *types.AgentError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Message: ve.Error(),
			Kind:    "validation_error",
			Field:   ve.Field,
		})
	case errors.As(err, &ae):
		writeError(w, http.StatusBadGateway, ErrorResponse{
			Message: ae.Error(),
			Kind:    "automation_error",
		})
	case errors.As(err, &ge):
		writeError(w, http.StatusBadGateway, ErrorResponse{
			Message: ge.Error(),
			Kind:    "agent_error",
		})
	default:
		writeError(w, http.StatusInternalServerError, ErrorResponse{
			Message: err.Error(),
			Kind:    "internal_error",
		})
	}
}

// ErrorWithCode writes an error response with a specific status code
func ErrorWithCode(w http.ResponseWriter, code int, message string) {
	writeError(w, code, ErrorResponse{Message: message, Kind: "internal_error"})
}

func writeError(w http.ResponseWriter, code int, resp ErrorResponse) {
	resp.Code = code
	WriteJSON(w, code, resp)
}
