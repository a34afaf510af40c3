package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	maxBodyBytes = 1 << 20
	// Ids are Postgres INT columns.
	maxID        = math.MaxInt32
)

var idListType = reflect.TypeOf(IDList{})

var groupNamePattern = regexp.MustCompile(`^[\p{L}\p{N}\p{P}\p{Zs}]+$`)

// FieldError is one entry of a 400 validation response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationResponse struct {
	Errors []FieldError `json:"errors"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("groupname", func(fl validator.FieldLevel) bool {
		return groupNamePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	v.RegisterAlias("id", fmt.Sprintf("gt=0,max=%d", maxID))
	return v
}

// IDList is a list of positive ids. It decodes from a JSON array of numbers
// or numeric strings, or from a comma-separated string.
type IDList []int

func (l *IDList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	var csv string
	if err := json.Unmarshal(data, &csv); err == nil {
		ids := IDList{}
		for _, part := range strings.Split(csv, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return idError(part)
			}
			ids = append(ids, id)
		}
		*l = ids
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return idError(string(data))
	}
	ids := make(IDList, 0, len(raw))
	for _, item := range raw {
		var n int
		if err := json.Unmarshal(item, &n); err == nil {
			ids = append(ids, n)
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return idError(string(item))
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return idError(s)
		}
		ids = append(ids, n)
	}
	*l = ids
	return nil
}

// idError is a type error, so the decoder attaches the JSON field name.
func idError(value string) error {
	return &json.UnmarshalTypeError{Value: value, Type: idListType}
}

func writeValidation(w http.ResponseWriter, errs ...FieldError) {
	writeJSON(w, http.StatusBadRequest, validationResponse{Errors: errs})
}

// decode reads a JSON body into dst, lets prepare normalise it, and then
// validates it. It writes the 400 response itself and reports false when
// the request is rejected.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any, prepare func()) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeValidation(w, decodeError(err))
		return false
	}
	if prepare != nil {
		prepare()
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			out := make([]FieldError, 0, len(verrs))
			for _, fe := range verrs {
				out = append(out, FieldError{Field: fieldName(fe), Message: fieldMessage(fe)})
			}
			writeValidation(w, out...)
			return false
		}
		writeValidation(w, FieldError{Field: "body", Message: err.Error()})
		return false
	}
	return true
}

func decodeError(err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Type == idListType {
		return FieldError{Field: typeErr.Field, Message: "Each ID must be a positive integer"}
	}
	if errors.As(err, &typeErr) {
		return FieldError{Field: typeErr.Field, Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind())}
	}
	if errors.Is(err, io.EOF) {
		return FieldError{Field: "body", Message: "Request body is required"}
	}
	return FieldError{Field: "body", Message: "Request body must be valid JSON: " + err.Error()}
}

// fieldName drops the struct name from the namespace, keeping list indexes.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return name + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return name + " must be a non-empty array"
		}
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "gt", "id":
		return "Each ID must be a positive integer"
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", name, fe.Param())
	case "email":
		return name + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	case "groupname":
		return "Group name contains invalid characters"
	default:
		return name + " is invalid"
	}
}

// pathID parses a positive integer URL parameter. It writes the 400 response
// itself and reports false when the parameter is invalid.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 32)
	if err != nil || id <= 0 {
		writeValidation(w, FieldError{Field: name, Message: "ID must be a positive integer"})
		return 0, false
	}
	return int(id), true
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}
