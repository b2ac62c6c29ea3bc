package toolcase

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapValueType(t *testing.T) {
	cases := []struct {
		typ  reflect.Type
		want ValueSchema
	}{
		{reflect.TypeFor[string](), ValueSchema{ValType: ValTypeString}},
		{reflect.TypeFor[int32](), ValueSchema{ValType: ValTypeInteger}},
		{reflect.TypeFor[uint](), ValueSchema{ValType: ValTypeInteger}},
		{reflect.TypeFor[float32](), ValueSchema{ValType: ValTypeNumber}},
		{reflect.TypeFor[bool](), ValueSchema{ValType: ValTypeBoolean}},
		{reflect.TypeFor[*string](), ValueSchema{ValType: ValTypeString, Nullable: true}},
		{reflect.TypeFor[[]int](), ValueSchema{ValType: ValTypeArray, InnerValType: ValTypeInteger}},
		{reflect.TypeFor[map[string]int](), ValueSchema{ValType: ValTypeJSON}},
		{reflect.TypeFor[struct{ A int }](), ValueSchema{ValType: ValTypeJSON}},
	}
	for _, tc := range cases {
		got, err := mapValueType(tc.typ)
		require.NoError(t, err, "type %s", tc.typ)
		assert.Equal(t, tc.want, got, "type %s", tc.typ)
	}

	_, err := mapValueType(reflect.TypeFor[chan int]())
	require.ErrorIs(t, err, errUnsupportedType)
	_, err = mapValueType(reflect.TypeFor[[][]int]())
	require.ErrorIs(t, err, errUnsupportedType)
}

func TestMapOutputType_DegradesToJSON(t *testing.T) {
	vs := mapOutputType(reflect.TypeFor[func()]())
	assert.Equal(t, ValTypeJSON, vs.ValType)
}

func TestGenerateSchema_Enrichment(t *testing.T) {
	type args struct {
		Mode  string `json:"mode" description:"Render mode" enum:"fast,full" default:"fast"`
		Limit *int   `json:"limit" description:"Max results"`
		Query string `json:"query" description:"Search text"`
	}
	params, err := deriveParameters("Search", reflect.TypeFor[args]())
	require.NoError(t, err)
	schemaMap, resolved, err := generateSchema[args](params)
	require.NoError(t, err)
	require.NotNil(t, resolved)

	assert.Equal(t, []any{"query"}, schemaMap["required"])
	props := schemaMap["properties"].(map[string]any)

	mode := props["mode"].(map[string]any)
	assert.Equal(t, "Render mode", mode["description"])
	assert.Equal(t, []any{"fast", "full"}, mode["enum"])
	assert.Equal(t, "fast", mode["default"])

	// Nullable parameters accept explicit null.
	limit := props["limit"].(map[string]any)
	assert.Equal(t, []any{"integer", "null"}, limit["type"])

	assert.NotContains(t, schemaMap, "$id")
}

func TestGenerateSchema_ArrayEnumConstrainsElements(t *testing.T) {
	type args struct {
		Modes []string `json:"modes" description:"Render modes" enum:"fast,full"`
	}
	params, err := deriveParameters("Render", reflect.TypeFor[args]())
	require.NoError(t, err)
	schemaMap, resolved, err := generateSchema[args](params)
	require.NoError(t, err)

	props := schemaMap["properties"].(map[string]any)
	modes := props["modes"].(map[string]any)
	assert.NotContains(t, modes, "enum")
	items := modes["items"].(map[string]any)
	assert.Equal(t, []any{"fast", "full"}, items["enum"])

	require.NoError(t, resolved.Validate(map[string]any{"modes": []any{"fast", "full"}}))
	require.Error(t, resolved.Validate(map[string]any{"modes": []any{"turbo"}}))
}

func TestGenerateSchema_ValidatorEnforcesRequired(t *testing.T) {
	type args struct {
		Query string `json:"query" description:"Search text"`
	}
	params, err := deriveParameters("Search", reflect.TypeFor[args]())
	require.NoError(t, err)
	_, resolved, err := generateSchema[args](params)
	require.NoError(t, err)

	require.NoError(t, resolved.Validate(map[string]any{"query": "x"}))
	require.Error(t, resolved.Validate(map[string]any{}))
	require.Error(t, resolved.Validate(map[string]any{"query": 1}))
}

func TestRegisterType(t *testing.T) {
	type stamp = time.Time
	RegisterType(stamp{}, ValTypeString, "date-time")

	type args struct {
		At stamp `json:"at" description:"When it happened"`
	}
	params, err := deriveParameters("Schedule", reflect.TypeFor[args]())
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, ValTypeString, params[0].ValueSchema.ValType)

	tool, err := NewTool("schedule", "Schedule something", func(_ context.Context, _ args) (string, error) {
		return "", nil
	})
	require.NoError(t, err)
	props := tool.InputSchema()["properties"].(map[string]any)
	at := props["at"].(map[string]any)
	assert.Equal(t, "string", at["type"])
	assert.Equal(t, "date-time", at["format"])
}

func TestRegisterType_Panics(t *testing.T) {
	assert.Panics(t, func() { RegisterType(nil, ValTypeString, "") })
	assert.Panics(t, func() { RegisterType(time.Time{}, "nonsense", "") })
}
