package router

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/google/uuid"
)

// Capture type constraints.
const (
	ParamString = "string"
	ParamInt    = "int"
	ParamUint   = "uint"
	ParamUUID   = "uuid"
)

// knownParamType reports whether t is a supported capture type constraint.
func knownParamType(t string) bool {
	switch t {
	case ParamString, ParamInt, ParamUint, ParamUUID:
		return true
	}
	return false
}

// ValidateParam validates a parameter value against its type constraint.
func ValidateParam(value, paramType string) error {
	switch paramType {
	case ParamInt:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
	case ParamUint:
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
	case ParamUUID:
		if len(value) != 36 {
			return fmt.Errorf("invalid UUID: %s", value)
		}
		if _, err := uuid.Parse(value); err != nil {
			return fmt.Errorf("invalid UUID: %s", value)
		}
	}
	return nil
}

// ParamParser decodes captured parameters into typed struct fields.
// Views that receive props use it to turn {"id": "42"} into an int64.
type ParamParser struct{}

// NewParamParser creates a new parameter parser.
func NewParamParser() *ParamParser {
	return &ParamParser{}
}

// Parse populates a struct from params.
// The target must be a pointer to a struct with `param` tags. Fields whose
// parameter is absent are left untouched.
func (p *ParamParser) Parse(params map[string]string, target any) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("param")
		if name == "" {
			continue
		}

		value, ok := params[name]
		if !ok {
			continue
		}

		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if err := setField(fv, value); err != nil {
			return fmt.Errorf("parsing param %q: %w", name, err)
		}
	}

	return nil
}

// DecodeParams is a shorthand for NewParamParser().Parse.
func DecodeParams(params map[string]string, target any) error {
	return NewParamParser().Parse(params, target)
}

func setField(field reflect.Value, value string) error {
	if field.Type() == reflect.TypeOf(uuid.UUID{}) {
		id, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid UUID: %s", value)
		}
		field.Set(reflect.ValueOf(id))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}
