package toolcase

import (
	"context"
	"encoding/json"
	"reflect"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// invokeFunc is the uniform executable reference behind every tool: coerced
// inputs in, loosely-typed value out. Synchronous and long-running tool
// bodies share this one contract; a body may block on ctx-bounded I/O.
type invokeFunc func(ctx context.Context, inputs map[string]any, tctx ToolContext) (any, error)

// Tool is a registrable callable together with its derived contract. Build
// one with NewTool or NewContextTool; it is immutable once built.
type Tool struct {
	name         string
	description  string
	params       []InputParameter
	output       ToolOutput
	requirements Requirements
	deprecation  string
	inputSchema  map[string]any
	resolved     *jsonschema.Resolved
	invoke       invokeFunc
}

// NewTool builds a Tool from a typed function. name is the tool's
// identifier; snake_case identifiers are normalized to PascalCase. The
// argument struct T declares the parameter contract (see deriveParameters);
// the return type R declares the output contract.
func NewTool[T any, R any](
	name, description string,
	fn func(ctx context.Context, args T) (R, error),
	opts ...ToolOption,
) (*Tool, error) {
	return newTool[T, R](name, description, func(ctx context.Context, _ ToolContext, args T) (R, error) {
		return fn(ctx, args)
	}, opts)
}

// NewContextTool builds a Tool whose handler additionally receives the
// request-scoped ToolContext (authorization, secrets, metadata). The context
// parameter is injected by the dispatcher and never appears in the tool's
// public schema.
func NewContextTool[T any, R any](
	name, description string,
	fn func(ctx context.Context, tctx ToolContext, args T) (R, error),
	opts ...ToolOption,
) (*Tool, error) {
	return newTool[T, R](name, description, fn, opts)
}

func newTool[T any, R any](
	name, description string,
	fn func(ctx context.Context, tctx ToolContext, args T) (R, error),
	opts []ToolOption,
) (*Tool, error) {
	toolName := toPascalCase(name)
	if toolName == "" {
		return nil, definitionErrorf("", "tool name must not be empty")
	}
	if description == "" {
		return nil, definitionErrorf(toolName, "tool is missing a description")
	}
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	requirements, err := buildRequirements(toolName, &o)
	if err != nil {
		return nil, err
	}
	params, err := deriveParameters(toolName, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	schemaMap, resolved, err := generateSchema[T](params)
	if err != nil {
		return nil, definitionErrorf(toolName, "schema generation failed: %v", err)
	}
	t := &Tool{
		name:         toolName,
		description:  description,
		params:       params,
		output:       deriveOutput(reflect.TypeFor[R](), o.outputDescription),
		requirements: requirements,
		deprecation:  o.deprecationMessage,
		inputSchema:  schemaMap,
		resolved:     resolved,
	}
	t.invoke = func(ctx context.Context, inputs map[string]any, tctx ToolContext) (any, error) {
		args, err := parseArgs[T](resolved, inputs)
		if err != nil {
			return nil, err
		}
		return fn(ctx, tctx, args)
	}
	return t, nil
}

// parseArgs round-trips the coerced input map through JSON so the schema
// validator sees plain decoded values, then unmarshals into the typed
// argument struct.
func parseArgs[T any](resolved *jsonschema.Resolved, inputs map[string]any) (T, error) {
	var zero T
	data, err := json.Marshal(inputs)
	if err != nil {
		return zero, wrapJSONParseError(err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, wrapJSONParseError(err)
	}
	if err := resolved.Validate(v); err != nil {
		return zero, &InputError{Reason: err.Error()}
	}
	var args T
	if err := json.Unmarshal(data, &args); err != nil {
		return zero, wrapJSONParseError(err)
	}
	if v, ok := any(args).(Validatable); ok {
		if err := v.Validate(); err != nil {
			if IsInputError(err) {
				return zero, err
			}
			return zero, &InputError{Reason: err.Error()}
		}
	}
	return args, nil
}

// Validatable is implemented by argument structs that need custom business
// validation beyond the derived schema. Called after schema validation and
// unmarshaling.
type Validatable interface {
	Validate() error
}

func buildRequirements(toolName string, o *toolOptions) (Requirements, error) {
	var r Requirements
	if o.auth != nil {
		if o.auth.Provider == "" {
			return r, definitionErrorf(toolName, "auth requirement must name a provider")
		}
		r.Authorization = o.auth
	}
	var err error
	if r.Secrets, err = normalizeKeys(o.secrets); err != nil {
		return r, definitionErrorf(toolName, "secrets: %v", err)
	}
	if r.Metadata, err = normalizeKeys(o.metadata); err != nil {
		return r, definitionErrorf(toolName, "metadata: %v", err)
	}
	return r, nil
}

// normalizeKeys lowercases and de-dupes requirement keys, preserving first
// occurrence order. Empty keys are definition mistakes.
func normalizeKeys(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			return nil, errKeyEmpty
		}
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Name returns the normalized (PascalCase) tool name.
func (t *Tool) Name() string { return t.name }

// Description returns the tool description shown to calling clients.
func (t *Tool) Description() string { return t.description }

// Parameters returns a copy of the derived parameter list, in declaration
// order.
func (t *Tool) Parameters() []InputParameter {
	return slices.Clone(t.params)
}

// Requirements returns the tool's cross-cutting requirements.
func (t *Tool) Requirements() Requirements { return t.requirements }

// Output returns the derived output contract.
func (t *Tool) Output() ToolOutput { return t.output }

// InputSchema returns a shallow copy of the JSON Schema advertised for the
// tool's inputs (top-level keys only). Nested maps are shared; callers must
// not mutate them.
func (t *Tool) InputSchema() map[string]any {
	out := make(map[string]any, len(t.inputSchema))
	for k, v := range t.inputSchema {
		out[k] = v
	}
	return out
}

// definition materializes the immutable ToolDefinition for this tool under
// the given toolkit.
func (t *Tool) definition(tk ToolkitInfo) ToolDefinition {
	fqn := NewFullyQualifiedName(t.name, tk.Name, tk.Version)
	return ToolDefinition{
		Name:               t.name,
		FullyQualifiedName: fqn.String(),
		Description:        t.description,
		Toolkit:            tk,
		Input:              ToolInput{Parameters: slices.Clone(t.params)},
		Output:             t.output,
		Requirements:       t.requirements,
		DeprecationMessage: t.deprecation,
	}
}
