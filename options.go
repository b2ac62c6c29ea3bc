package toolcase

import (
	"context"
	"log/slog"
	"time"
)

// toolOptions hold optional tool settings applied by NewTool.
type toolOptions struct {
	outputDescription  string
	deprecationMessage string
	auth               *AuthRequirement
	secrets            []string
	metadata           []string
}

// ToolOption configures a tool at build time.
type ToolOption func(*toolOptions)

// WithOutputDescription sets a human-readable description of the tool's
// return value.
func WithOutputDescription(desc string) ToolOption {
	return func(o *toolOptions) {
		o.outputDescription = desc
	}
}

// WithDeprecationMessage marks the tool as deprecated. The message is
// surfaced in the tool's definition so calling frameworks can steer away.
func WithDeprecationMessage(msg string) ToolOption {
	return func(o *toolOptions) {
		o.deprecationMessage = msg
	}
}

// WithRequiresAuth declares that invoking the tool needs a completed
// authorization with the named provider.
func WithRequiresAuth(provider string, scopes ...string) ToolOption {
	return func(o *toolOptions) {
		o.auth = &AuthRequirement{Provider: provider, Scopes: scopes}
	}
}

// WithRequiresSecrets declares the secret keys the call context must supply.
// Keys are de-duped case-insensitively at build time.
func WithRequiresSecrets(keys ...string) ToolOption {
	return func(o *toolOptions) {
		o.secrets = append(o.secrets, keys...)
	}
}

// WithRequiresMetadata declares the metadata keys the call context must
// supply.
func WithRequiresMetadata(keys ...string) ToolOption {
	return func(o *toolOptions) {
		o.metadata = append(o.metadata, keys...)
	}
}

// catalogOptions hold optional Catalog settings.
type catalogOptions struct {
	logger           *slog.Logger
	disabledTools    []string
	disabledToolkits []string
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions)

// WithCatalogLogger sets the logger used for registration events.
func WithCatalogLogger(logger *slog.Logger) CatalogOption {
	return func(o *catalogOptions) {
		o.logger = logger
	}
}

// WithDisabledTools excludes the named tools ("Toolkit.Tool", case-
// insensitive) from registration.
func WithDisabledTools(names ...string) CatalogOption {
	return func(o *catalogOptions) {
		o.disabledTools = append(o.disabledTools, names...)
	}
}

// WithDisabledToolkits excludes every tool of the named toolkits (case-
// insensitive) from registration.
func WithDisabledToolkits(names ...string) CatalogOption {
	return func(o *catalogOptions) {
		o.disabledToolkits = append(o.disabledToolkits, names...)
	}
}

// executorOptions hold optional Executor settings.
type executorOptions struct {
	timeout        time.Duration
	maxConcurrency int
	recoverPanics  bool
	logger         *slog.Logger
	onBefore       func(context.Context, CallRequest)
	onAfter        func(context.Context, CallRequest, CallResponse)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*executorOptions)

// WithDefaultTimeout sets the default deadline for tool invocations. Zero
// disables the deadline.
func WithDefaultTimeout(d time.Duration) ExecutorOption {
	return func(o *executorOptions) {
		o.timeout = d
	}
}

// WithMaxConcurrency limits concurrent tool invocations (semaphore). Pass 0
// or negative to disable the limit.
func WithMaxConcurrency(n int) ExecutorOption {
	return func(o *executorOptions) {
		o.maxConcurrency = n
	}
}

// WithRecoverPanics enables panic recovery in Call (returns a non-retryable
// error envelope instead of crashing the process).
func WithRecoverPanics(enable bool) ExecutorOption {
	return func(o *executorOptions) {
		o.recoverPanics = enable
	}
}

// WithExecutorLogger sets the logger used for invocation events.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(o *executorOptions) {
		o.logger = logger
	}
}

// WithOnBeforeCall sets a hook called before each invocation.
func WithOnBeforeCall(fn func(context.Context, CallRequest)) ExecutorOption {
	return func(o *executorOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterCall sets a hook called after each invocation with the final
// envelope.
func WithOnAfterCall(fn func(context.Context, CallRequest, CallResponse)) ExecutorOption {
	return func(o *executorOptions) {
		o.onAfter = fn
	}
}
