package toolcase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Executor invokes resolved tools with validated, coerced inputs and
// normalizes every outcome into a CallResponse envelope. An invocation moves
// through validating, authorizing, and executing in that order with no
// backward transitions; the authorizing step is skipped when the tool
// declares no auth requirement.
//
// Each Call runs independently. A deadline abandons the wait and reports a
// retryable timeout, but the tool body is not preempted: it keeps running
// until it observes ctx itself. Best-effort cancellation only.
type Executor struct {
	catalog *Catalog
	sem     chan struct{}
	opts    executorOptions
	done    chan struct{}
	running sync.WaitGroup
	mu      sync.Mutex
}

// NewExecutor creates an Executor over a catalog.
func NewExecutor(catalog *Catalog, opts ...ExecutorOption) *Executor {
	o := executorOptions{
		timeout:        30 * time.Second,
		maxConcurrency: 10,
		recoverPanics:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	return &Executor{
		catalog: catalog,
		sem:     sem,
		opts:    o,
		done:    make(chan struct{}),
	}
}

// Call resolves and invokes one tool. Resolution failures (unknown or
// malformed tool name) are returned as errors so transports can map them to
// a 404-equivalent; every execution outcome (success, tool error, timeout,
// authorization pending) is expressed inside the returned envelope.
func (e *Executor) Call(ctx context.Context, req CallRequest) (CallResponse, error) {
	e.mu.Lock()
	select {
	case <-e.done:
		e.mu.Unlock()
		return CallResponse{}, ErrShutdown
	default:
	}
	e.running.Add(1)
	e.mu.Unlock()
	defer e.running.Done()

	m, err := e.catalog.GetByName(req.ToolName, "")
	if err != nil {
		return CallResponse{}, err
	}

	if req.InvocationID == "" {
		req.InvocationID = uuid.NewString()
	}
	if err := e.acquireSemaphore(ctx); err != nil {
		// A deadline that expires while waiting for a slot reads the same
		// to the caller as one expiring mid-execution.
		if errors.Is(err, context.DeadlineExceeded) {
			return CallResponse{
				InvocationID: req.InvocationID,
				Output: CallOutput{Error: &CallError{
					Message:          ErrTimeout.Error(),
					DeveloperMessage: err.Error(),
					CanRetry:         true,
				}},
			}, nil
		}
		return CallResponse{}, err
	}
	defer e.releaseSemaphore()

	if e.opts.onBefore != nil {
		e.opts.onBefore(ctx, req)
	}
	start := time.Now()
	resp := e.call(ctx, m, req)
	resp.InvocationID = req.InvocationID
	resp.DurationMS = float64(time.Since(start)) / float64(time.Millisecond)

	if e.opts.onAfter != nil {
		e.opts.onAfter(ctx, req, resp)
	}
	e.log(ctx, m, req, resp)
	return resp, nil
}

func (e *Executor) call(ctx context.Context, m *MaterializedTool, req CallRequest) CallResponse {
	// Validating
	coerced, err := coerceInputs(m.Definition.Input.Parameters, req.Inputs)
	if err != nil {
		return failResponse(err)
	}

	// Authorizing, skipped entirely without an auth requirement
	if auth := m.Definition.Requirements.Authorization; auth != nil {
		if !authorized(auth, req.Context) {
			return authPendingResponse(auth)
		}
	}
	if miss := missingKeys(m.Definition.Requirements.Secrets, req.Context.Secrets); miss != "" {
		return failResponse(&ExecutionError{Message: "missing required secret: " + miss})
	}
	if miss := missingKeys(m.Definition.Requirements.Metadata, req.Context.Metadata); miss != "" {
		return failResponse(&ExecutionError{Message: "missing required metadata: " + miss})
	}

	// Executing
	if e.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.timeout)
		defer cancel()
	}

	type callResult struct {
		value any
		err   error
	}
	resultCh := make(chan callResult, 1)
	go func() {
		if e.opts.recoverPanics {
			defer func() {
				if p := recover(); p != nil {
					resultCh <- callResult{err: &ExecutionError{
						Message:          "internal error during tool execution",
						DeveloperMessage: (&panicError{p: p}).Error() + "\n" + string(debug.Stack()),
					}}
				}
			}()
		}
		value, err := m.Tool.invoke(ctx, coerced, req.Context)
		resultCh <- callResult{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		// The tool body is not preempted; it runs until it observes ctx.
		return CallResponse{Output: CallOutput{Error: &CallError{
			Message:          ErrTimeout.Error(),
			DeveloperMessage: ctx.Err().Error(),
			CanRetry:         true,
		}}}
	case res := <-resultCh:
		if res.err != nil {
			return failResponse(res.err)
		}
		if _, err := json.Marshal(res.value); err != nil {
			// A value the envelope cannot carry is a developer error, never
			// a protocol crash.
			return failResponse(&ExecutionError{
				Message:          "tool returned a value that cannot be serialized",
				DeveloperMessage: err.Error(),
			})
		}
		return CallResponse{Success: true, Output: CallOutput{Value: res.value}}
	}
}

// failResponse maps a tool-boundary error into the envelope's error branch.
// No error class escapes to the transport layer as an unhandled fault.
func failResponse(err error) CallResponse {
	var authErr *AuthorizationRequiredError
	if errors.As(err, &authErr) {
		return authPendingResponse(&AuthRequirement{Provider: authErr.Provider, Scopes: authErr.Scopes})
	}
	ce := &CallError{Message: err.Error()}
	var retryErr *RetryableError
	var execErr *ExecutionError
	switch {
	case errors.As(err, &retryErr):
		ce.CanRetry = true
		ce.RetryAfterMS = retryErr.RetryAfter.Milliseconds()
		ce.AdditionalPromptContent = retryErr.AdditionalPromptContent
	case errors.As(err, &execErr):
		ce.DeveloperMessage = execErr.DeveloperMessage
		if execErr.Err != nil && ce.DeveloperMessage == "" {
			ce.DeveloperMessage = execErr.Err.Error()
		}
	}
	return CallResponse{Output: CallOutput{Error: ce}}
}

func authPendingResponse(auth *AuthRequirement) CallResponse {
	return CallResponse{Output: CallOutput{RequiresAuthorization: &RequiresAuthorization{
		Provider: auth.Provider,
		Scopes:   auth.Scopes,
		Status:   "pending",
	}}}
}

// authorized reports whether the call context satisfies the tool's auth
// requirement: a token must be present, and when the context names a
// provider it must match the required one.
func authorized(auth *AuthRequirement, tctx ToolContext) bool {
	a := tctx.Authorization
	if a == nil || a.Token == "" {
		return false
	}
	return a.Provider == "" || strings.EqualFold(a.Provider, auth.Provider)
}

func missingKeys(required []string, supplied map[string]string) string {
	for _, key := range required {
		found := false
		for k := range supplied {
			if strings.EqualFold(k, key) {
				found = true
				break
			}
		}
		if !found {
			return key
		}
	}
	return ""
}

func (e *Executor) log(ctx context.Context, m *MaterializedTool, req CallRequest, resp CallResponse) {
	switch {
	case resp.Success:
		e.opts.logger.DebugContext(ctx, "tool call completed",
			"tool", m.Definition.FullyQualifiedName, "invocation_id", resp.InvocationID,
			"duration_ms", resp.DurationMS)
	case resp.Output.RequiresAuthorization != nil:
		e.opts.logger.InfoContext(ctx, "tool call requires authorization",
			"tool", m.Definition.FullyQualifiedName, "invocation_id", resp.InvocationID,
			"provider", resp.Output.RequiresAuthorization.Provider)
	default:
		e.opts.logger.WarnContext(ctx, "tool call failed",
			"tool", m.Definition.FullyQualifiedName, "invocation_id", resp.InvocationID,
			"error", resp.Output.Error.Message, "can_retry", resp.Output.Error.CanRetry)
	}
}

func (e *Executor) acquireSemaphore(ctx context.Context) error {
	if e.sem == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) releaseSemaphore() {
	if e.sem != nil {
		<-e.sem
	}
}

// Shutdown closes the executor for new calls and waits for in-flight
// invocations or ctx to cancel.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	select {
	case <-e.done:
		e.mu.Unlock()
		return nil
	default:
		close(e.done)
	}
	e.mu.Unlock()
	finished := make(chan struct{})
	go func() {
		e.running.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
