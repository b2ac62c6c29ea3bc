package toolcase

import "strings"

// Wire kinds for values crossing the tool boundary.
const (
	ValTypeString  = "string"
	ValTypeInteger = "integer"
	ValTypeNumber  = "number"
	ValTypeBoolean = "boolean"
	ValTypeJSON    = "json"
	ValTypeArray   = "array"
)

// ValueSchema is the normalized description of a value's shape: a wire kind,
// an inner kind when the value is an array, an optional closed list of
// allowed values, and nullability.
type ValueSchema struct {
	ValType      string   `json:"val_type"`
	InnerValType string   `json:"inner_val_type,omitempty"`
	Enum         []string `json:"enum,omitempty"`
	Nullable     bool     `json:"nullable,omitempty"`
}

// InputParameter describes one parameter a tool accepts.
type InputParameter struct {
	Name        string      `json:"name"`
	Required    bool        `json:"required"`
	Description string      `json:"description"`
	Inferrable  bool        `json:"inferrable"`
	ValueSchema ValueSchema `json:"value_schema"`
	Default     any         `json:"default,omitempty"`
}

// ToolInput is the full input contract of a tool. Parameter order equals
// declaration order in the argument struct.
type ToolInput struct {
	Parameters []InputParameter `json:"parameters"`
}

// ToolOutput describes a tool's return value. A nil ValueSchema means the
// output shape is opaque.
type ToolOutput struct {
	Description    string       `json:"description,omitempty"`
	AvailableModes []string     `json:"available_modes"`
	ValueSchema    *ValueSchema `json:"value_schema,omitempty"`
}

// AuthRequirement declares that a tool needs a completed authorization with
// the named provider before it can run.
type AuthRequirement struct {
	Provider string   `json:"provider"`
	Scopes   []string `json:"scopes,omitempty"`
}

// Requirements are the cross-cutting requirements of a tool: authorization,
// secret keys, and metadata keys the call context must supply.
type Requirements struct {
	Authorization *AuthRequirement `json:"authorization,omitempty"`
	Secrets       []string         `json:"secrets,omitempty"`
	Metadata      []string         `json:"metadata,omitempty"`
}

// ToolkitInfo is the materialized metadata of the toolkit a tool belongs to.
type ToolkitInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// ToolDefinition is the immutable contract of a registered tool.
// Created once at registration; never mutated afterwards.
type ToolDefinition struct {
	Name               string       `json:"name"`
	FullyQualifiedName string       `json:"fully_qualified_name"`
	Description        string       `json:"description"`
	Toolkit            ToolkitInfo  `json:"toolkit"`
	Input              ToolInput    `json:"input"`
	Output             ToolOutput   `json:"output"`
	Requirements       Requirements `json:"requirements"`
	DeprecationMessage string       `json:"deprecation_message,omitempty"`
}

// FQN returns the addressing key for this definition.
func (d ToolDefinition) FQN() FullyQualifiedName {
	return NewFullyQualifiedName(d.Name, d.Toolkit.Name, d.Toolkit.Version)
}

// AuthorizationContext carries the caller's completed authorization for one
// provider.
type AuthorizationContext struct {
	Provider string `json:"provider,omitempty"`
	Token    string `json:"token,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// ToolContext is the request-scoped context injected into a tool invocation.
// It is never part of a tool's public schema.
type ToolContext struct {
	Authorization *AuthorizationContext `json:"authorization,omitempty"`
	Secrets       map[string]string     `json:"secrets,omitempty"`
	Metadata      map[string]string     `json:"metadata,omitempty"`
}

// Secret returns the named secret from the context, case-insensitively.
func (c ToolContext) Secret(key string) (string, bool) {
	if v, ok := c.Secrets[key]; ok {
		return v, true
	}
	for k, v := range c.Secrets {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// CallRequest asks for one tool invocation. ToolName is an FQN string,
// optionally version-suffixed ("Toolkit.Tool@1.0.0").
type CallRequest struct {
	InvocationID string         `json:"invocation_id,omitempty"`
	ToolName     string         `json:"tool_name"`
	Inputs       map[string]any `json:"inputs"`
	Context      ToolContext    `json:"context"`
}

// CallError is the error branch of the output envelope.
type CallError struct {
	Message                 string `json:"message"`
	DeveloperMessage        string `json:"developer_message,omitempty"`
	CanRetry                bool   `json:"can_retry"`
	AdditionalPromptContent string `json:"additional_prompt_content,omitempty"`
	RetryAfterMS            int64  `json:"retry_after_ms,omitempty"`
}

// RequiresAuthorization is the authorization-pending branch of the output
// envelope: a normal outcome, not a failure.
type RequiresAuthorization struct {
	Provider string   `json:"provider"`
	Scopes   []string `json:"scopes,omitempty"`
	Status   string   `json:"status"`
}

// CallOutput holds exactly one of: a value, an error, or an authorization
// requirement.
type CallOutput struct {
	Value                 any                    `json:"value,omitempty"`
	Error                 *CallError             `json:"error,omitempty"`
	RequiresAuthorization *RequiresAuthorization `json:"requires_authorization,omitempty"`
}

// CallResponse is the wire-level envelope every invocation path produces.
type CallResponse struct {
	InvocationID string     `json:"invocation_id"`
	DurationMS   float64    `json:"duration"`
	Success      bool       `json:"success"`
	Output       CallOutput `json:"output"`
}
