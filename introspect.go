package toolcase

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// deriveParameters extracts the ordered parameter list from a tool's argument
// struct. The struct is the tool's declared contract: field order becomes
// parameter order, the json tag names the wire parameter, and the
// description/enum/default/inferrable tags carry the rest of the metadata.
//
// Definition rules enforced here:
//   - every parameter needs a description;
//   - parameter types must map to a wire kind;
//   - enum is only valid on string-kinded parameters and default values must
//     be members of the enum;
//   - defaults on array and json kinds are rejected: they cannot be captured
//     as a static schema default.
//
// Requiredness is derived, never declared: a parameter is required when it
// has no default and is not nullable (a pointer).
func deriveParameters(toolName string, typ reflect.Type) ([]InputParameter, error) {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, definitionErrorf(toolName, "argument type %s must be a struct", typ)
	}
	params := make([]InputParameter, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name := wireName(field)
		if name == "" {
			continue
		}
		vs, err := mapValueType(field.Type)
		if err != nil {
			return nil, definitionErrorf(toolName, "parameter %q: %v", name, err)
		}
		if enumTag := field.Tag.Get("enum"); enumTag != "" {
			if vs.ValType != ValTypeString && !(vs.ValType == ValTypeArray && vs.InnerValType == ValTypeString) {
				return nil, definitionErrorf(toolName, "parameter %q: enum requires a string type, got %s", name, vs.ValType)
			}
			for _, v := range strings.Split(enumTag, ",") {
				vs.Enum = append(vs.Enum, strings.TrimSpace(v))
			}
		}
		desc := field.Tag.Get("description")
		if desc == "" {
			return nil, definitionErrorf(toolName, "parameter %q is missing a description", name)
		}
		var def any
		if raw, ok := field.Tag.Lookup("default"); ok {
			def, err = parseDefault(vs, raw)
			if err != nil {
				return nil, definitionErrorf(toolName, "parameter %q: %v", name, err)
			}
		}
		params = append(params, InputParameter{
			Name:        name,
			Required:    def == nil && !vs.Nullable,
			Description: desc,
			Inferrable:  field.Tag.Get("inferrable") != "false",
			ValueSchema: vs,
			Default:     def,
		})
	}
	return params, nil
}

// wireName returns the wire-level parameter name for a struct field, or ""
// when the field is excluded from the contract.
func wireName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// parseDefault parses a default tag literal against the parameter's declared
// kind. Composite kinds cannot carry a static default.
func parseDefault(vs ValueSchema, raw string) (any, error) {
	switch vs.ValType {
	case ValTypeString:
		if len(vs.Enum) > 0 && !containsFold(vs.Enum, raw) {
			return nil, fmt.Errorf("default %q is not one of the enum values", raw)
		}
		return raw, nil
	case ValTypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a valid integer", raw)
		}
		return n, nil
	case ValTypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a valid number", raw)
		}
		return f, nil
	case ValTypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a valid boolean", raw)
		}
		return b, nil
	case ValTypeArray, ValTypeJSON:
		return nil, errors.New("defaults for array and json parameters cannot be captured in a static schema")
	}
	return nil, fmt.Errorf("default on unknown kind %q", vs.ValType)
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// deriveOutput builds the output contract for a tool's return type. An empty
// struct return means the tool yields no value. Unsupported return types
// degrade to an opaque json node rather than failing: return derivation is
// total.
func deriveOutput(typ reflect.Type, description string) ToolOutput {
	if typ.Kind() == reflect.Struct && typ.NumField() == 0 {
		return ToolOutput{Description: description, AvailableModes: []string{"null"}}
	}
	modes := []string{"value", "error"}
	nullable := typ.Kind() == reflect.Pointer
	if nullable {
		modes = append(modes, "null")
	}
	vs := mapOutputType(typ)
	return ToolOutput{
		Description:    description,
		AvailableModes: modes,
		ValueSchema:    &vs,
	}
}

// toPascalCase converts a snake_case identifier to PascalCase. Identifiers
// whose first character is already uppercase pass through unchanged.
func toPascalCase(s string) string {
	if s == "" {
		return s
	}
	if r := []rune(s)[0]; unicode.IsUpper(r) {
		return s
	}
	var b strings.Builder
	for seg := range strings.SplitSeq(s, "_") {
		if seg == "" {
			continue
		}
		r := []rune(seg)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}
