// Package toolcase provides an in-memory catalog for registering, describing,
// and invoking tools (functions) by fully-qualified name.
//
// # Overview
//
// A calling framework resolves tools by name and invokes them with decoded
// JSON. This package turns a typed Go function into a catalogable tool:
// derive a schema from its argument struct → register it under a toolkit →
// resolve "Toolkit.Tool@version" → validate and coerce inputs → execute →
// wrap the result or error in a uniform output envelope.
//
// Pipeline: Go function + argument struct → NewTool (schema derivation) →
// Toolkit → Catalog → Executor.Call (coerce, validate, authorize, call,
// envelope) → CallResponse.
//
// # Key concepts
//
//   - Single Source of Truth: one argument struct with tags (json,
//     description, enum, default) drives both the schema advertised to
//     clients and the validation of incoming inputs.
//   - Fully-qualified naming: tools live under a two-level namespace
//     "Toolkit.Tool", case-insensitive, with optional toolkit versions
//     coexisting side by side. Unversioned lookups resolve to the highest
//     registered version.
//   - Uniform envelopes: every invocation produces a CallResponse whether
//     the tool succeeded, failed, timed out, or needs authorization first.
//
// See FullyQualifiedName, ToolDefinition, Catalog, and Executor for the core
// types, and NewTool / NewToolkit for registration.
//
// # Example
//
//	type Args struct {
//	    City string `json:"city" description:"City to look up"`
//	}
//	type Out struct {
//	    Temp float64 `json:"temp"`
//	}
//	tool, err := toolcase.NewTool("get_weather", "Get current weather",
//	    func(_ context.Context, a Args) (Out, error) {
//	        return Out{Temp: 22.5}, nil
//	    })
//	tk := toolcase.NewToolkit("Weather", "1.0.0", "Weather lookups")
//	tk.Add(tool, err)
//	cat := toolcase.NewCatalog()
//	cat.AddToolkit(tk)
//	exec := toolcase.NewExecutor(cat)
//	resp, err := exec.Call(ctx, toolcase.CallRequest{
//	    ToolName: "Weather.GetWeather",
//	    Inputs:   map[string]any{"city": "Lisbon"},
//	})
package toolcase
