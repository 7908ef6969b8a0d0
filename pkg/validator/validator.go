package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// FieldError reports the first rule a struct field violated
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Message
}

// ValidateStruct validates a struct based on validate tags.
//
// Supported rules: required, email, min=N, max=N (string length in characters or
// slice length) and oneof=a b c. Fields are reported by their json name.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return errors.New("not a struct")
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonName(field)
		for _, rule := range strings.Split(tag, ",") {
			if msg := validateField(v.Field(i), strings.TrimSpace(rule)); msg != "" {
				return &FieldError{Field: name, Message: msg}
			}
		}
	}

	return nil
}

// validateField returns a message when value breaks rule
func validateField(value reflect.Value, rule string) string {
	name, arg, _ := strings.Cut(rule, "=")
	switch name {
	case "required":
		if isZero(value) {
			return "is required"
		}
	case "email":
		if value.Kind() == reflect.String && value.String() != "" && ValidateEmail(value.String()) != nil {
			return "must be a valid email"
		}
	case "min", "max":
		limit, err := strconv.Atoi(arg)
		if err != nil {
			return ""
		}
		n, ok := length(value)
		if !ok {
			return ""
		}
		if name == "min" && n < limit {
			return fmt.Sprintf("must be at least %d long", limit)
		}
		if name == "max" && n > limit {
			return fmt.Sprintf("must be at most %d long", limit)
		}
	case "oneof":
		if value.Kind() != reflect.String || value.String() == "" {
			return ""
		}
		for _, allowed := range strings.Fields(arg) {
			if value.String() == allowed {
				return ""
			}
		}
		return "must be one of: " + strings.Join(strings.Fields(arg), ", ")
	}
	return ""
}

func length(v reflect.Value) (int, bool) {
	switch v.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(strings.TrimSpace(v.String())), true
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len(), true
	default:
		return 0, false
	}
}

// isZero checks if a value is zero/empty
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Struct:
		return v.IsZero()
	default:
		return false
	}
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// SanitizeString removes null bytes and surrounding whitespace
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
