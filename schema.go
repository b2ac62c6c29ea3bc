package toolcase

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// customType pairs the wire kind a registered Go type maps to with the JSON
// Schema node used when generating client-facing schemas.
type customType struct {
	valType string
	schema  *jsonschema.Schema
}

var (
	customTypesMu sync.RWMutex
	customTypes   = make(map[reflect.Type]customType)
)

// RegisterType maps a custom Go type to a wire kind in derived schemas.
// emptyInstance is a value of the type to register (e.g. uuid.UUID{}); it
// must not be nil. valType is one of the wire kinds (ValTypeString etc.).
// format is an optional JSON Schema format hint (e.g. "uuid", "date-time").
// Pointer fields (*T) use the same mapping as T; register the value type.
// Call RegisterType at application startup before the first NewTool.
func RegisterType(emptyInstance any, valType, format string) {
	if emptyInstance == nil {
		panic("toolcase: RegisterType emptyInstance must not be nil")
	}
	jsonType, ok := jsonSchemaType(valType)
	if !ok {
		panic(fmt.Sprintf("toolcase: RegisterType unknown wire kind %q", valType))
	}
	t := reflect.TypeOf(emptyInstance)
	customTypesMu.Lock()
	defer customTypesMu.Unlock()
	customTypes[t] = customType{
		valType: valType,
		schema:  &jsonschema.Schema{Type: jsonType, Format: format},
	}
}

func jsonSchemaType(valType string) (string, bool) {
	switch valType {
	case ValTypeString, ValTypeInteger, ValTypeNumber, ValTypeBoolean:
		return valType, true
	case ValTypeJSON:
		return "object", true
	case ValTypeArray:
		return "array", true
	}
	return "", false
}

func lookupCustomType(t reflect.Type) (customType, bool) {
	customTypesMu.RLock()
	defer customTypesMu.RUnlock()
	ct, ok := customTypes[t]
	return ct, ok
}

// buildTypeSchemas returns a copy of registered type schemas for use in
// ForOptions. Safe for concurrent use with RegisterType.
func buildTypeSchemas() map[reflect.Type]*jsonschema.Schema {
	customTypesMu.RLock()
	defer customTypesMu.RUnlock()
	out := make(map[reflect.Type]*jsonschema.Schema, len(customTypes))
	for t, ct := range customTypes {
		if ct.schema != nil {
			out[t] = ct.schema.CloneSchemas()
		}
	}
	return out
}

// errUnsupportedType marks a Go type with no wire representation. Parameter
// derivation turns it into a DefinitionError; output derivation degrades to
// an opaque schema instead.
var errUnsupportedType = errors.New("unsupported type")

// mapValueType converts a declared Go type into a ValueSchema. Pointers
// flatten to their element type with Nullable set. Slices become array nodes
// with an inner kind; maps and structs become untyped json nodes.
func mapValueType(t reflect.Type) (ValueSchema, error) {
	var vs ValueSchema
	if t.Kind() == reflect.Pointer {
		inner, err := mapValueType(t.Elem())
		if err != nil {
			return ValueSchema{}, err
		}
		inner.Nullable = true
		return inner, nil
	}
	if ct, ok := lookupCustomType(t); ok {
		vs.ValType = ct.valType
		return vs, nil
	}
	switch t.Kind() {
	case reflect.String:
		vs.ValType = ValTypeString
	case reflect.Bool:
		vs.ValType = ValTypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		vs.ValType = ValTypeInteger
	case reflect.Float32, reflect.Float64:
		vs.ValType = ValTypeNumber
	case reflect.Slice, reflect.Array:
		inner, err := mapValueType(t.Elem())
		if err != nil {
			return ValueSchema{}, err
		}
		if inner.ValType == ValTypeArray {
			return ValueSchema{}, fmt.Errorf("%w: nested arrays (%s)", errUnsupportedType, t)
		}
		vs.ValType = ValTypeArray
		vs.InnerValType = inner.ValType
	case reflect.Map, reflect.Struct:
		vs.ValType = ValTypeJSON
	default:
		return ValueSchema{}, fmt.Errorf("%w: %s", errUnsupportedType, t)
	}
	return vs, nil
}

// mapOutputType converts a return type into a schema node, degrading to an
// opaque json node for types with no wire representation. Derivation of
// return schemas is total; only parameters are strictly typed.
func mapOutputType(t reflect.Type) ValueSchema {
	vs, err := mapValueType(t)
	if err != nil {
		return ValueSchema{ValType: ValTypeJSON}
	}
	return vs
}

// generateSchema produces a JSON Schema map and a resolved validator for the
// argument struct type T, enriched with the derived parameter metadata. It is
// called once when building a Tool.
func generateSchema[T any](params []InputParameter) (map[string]any, *jsonschema.Resolved, error) {
	opts := &jsonschema.ForOptions{TypeSchemas: buildTypeSchemas()}
	schema, err := jsonschema.For[T](opts)
	if err != nil {
		return nil, nil, err
	}
	if schema == nil {
		return nil, nil, errNilSchema
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, nil, err
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return nil, nil, err
	}
	enrichSchemaFromParameters(schemaMap, params)
	stripSchemaIDs(schemaMap)
	resolved, err := compileRawSchema(schemaMap)
	if err != nil {
		return nil, nil, err
	}
	return schemaMap, resolved, nil
}

// enrichSchemaFromParameters overlays derived parameter metadata (description,
// enum, default, requiredness, nullability) onto the root-level properties of
// the generated schema.
func enrichSchemaFromParameters(schemaMap map[string]any, params []InputParameter) {
	if schemaMap == nil {
		return
	}
	props, ok := schemaMap["properties"].(map[string]any)
	if !ok {
		return
	}
	required := make([]any, 0, len(params))
	for _, p := range params {
		prop, ok := props[p.Name].(map[string]any)
		if !ok {
			continue
		}
		prop["description"] = p.Description
		if len(p.ValueSchema.Enum) > 0 {
			enum := make([]any, len(p.ValueSchema.Enum))
			for i, v := range p.ValueSchema.Enum {
				enum[i] = v
			}
			if p.ValueSchema.ValType == ValTypeArray {
				// The closed list constrains the elements, not the array
				// value itself.
				if items, ok := prop["items"].(map[string]any); ok {
					items["enum"] = enum
				}
			} else {
				prop["enum"] = enum
			}
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if p.ValueSchema.Nullable {
			// Pointer parameters accept an explicit null on the wire.
			if typ, ok := prop["type"].(string); ok {
				prop["type"] = []any{typ, "null"}
			}
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	if len(required) > 0 {
		schemaMap["required"] = required
	} else {
		delete(schemaMap, "required")
	}
}

// walkSchema recursively visits every map node in the schema tree (including
// $defs and definitions).
func walkSchema(schemaMap map[string]any, visit func(map[string]any)) {
	if schemaMap == nil {
		return
	}
	visit(schemaMap)
	for _, val := range schemaMap {
		switch v := val.(type) {
		case map[string]any:
			walkSchema(v, visit)
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					walkSchema(m, visit)
				}
			}
		}
	}
}

var errNilSchema = errors.New("schema reflection returned nil")

// compileRawSchema compiles a raw JSON Schema map into a resolved validator.
// The map is not mutated.
func compileRawSchema(schemaMap map[string]any) (*jsonschema.Resolved, error) {
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.Resolve(nil)
}

// stripSchemaIDs removes id and $id from schema so resolution does not depend
// on them.
func stripSchemaIDs(schemaMap map[string]any) {
	walkSchema(schemaMap, func(n map[string]any) {
		delete(n, "id")
		delete(n, "$id")
	})
}
