// Package testutil provides test helpers for toolcase (canned tools, a
// pre-wired catalog and executor).
package testutil

import (
	"context"
	"time"

	"github.com/toolcase/toolcase"
)

type noArgs struct{}

// StaticTool returns a tool with no parameters that always returns value.
func StaticTool(name, description string, value any) (*toolcase.Tool, error) {
	return toolcase.NewTool(name, description, func(_ context.Context, _ noArgs) (any, error) {
		return value, nil
	})
}

// FailingTool returns a tool with no parameters whose invocation always
// fails with err.
func FailingTool(name, description string, err error) (*toolcase.Tool, error) {
	return toolcase.NewTool(name, description, func(_ context.Context, _ noArgs) (any, error) {
		return nil, err
	})
}

// NewTestCatalog returns a catalog with the given tools registered under the
// implicit default toolkit. Registration errors panic; test fixtures are
// expected to be well-formed.
func NewTestCatalog(tools ...*toolcase.Tool) *toolcase.Catalog {
	c := toolcase.NewCatalog()
	for _, t := range tools {
		if _, err := c.AddTool(t, nil); err != nil {
			panic(err)
		}
	}
	return c
}

// NewTestExecutor returns an Executor with a long timeout and panic recovery
// enabled, suitable for tests.
func NewTestExecutor(c *toolcase.Catalog) *toolcase.Executor {
	return toolcase.NewExecutor(c,
		toolcase.WithDefaultTimeout(30*time.Second),
		toolcase.WithRecoverPanics(true),
	)
}
