package main

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/toolcase/toolcase"
)

type echoArgs struct {
	Message string `json:"message" description:"Text to echo back"`
	Repeat  *int   `json:"repeat" description:"How many times to repeat the message"`
}

type clockArgs struct {
	Format string `json:"format" description:"Timestamp format" enum:"rfc3339,unix" default:"rfc3339"`
}

type idArgs struct{}

// builtinToolkit returns the tools every worker serves out of the box. It
// doubles as a smoke-test surface for a fresh deployment.
func builtinToolkit() *toolcase.Toolkit {
	tk := toolcase.NewToolkit("Utils", version, "Built-in utility tools")
	tk.Add(toolcase.NewTool("echo", "Echo a message back to the caller",
		func(_ context.Context, args echoArgs) (string, error) {
			n := 1
			if args.Repeat != nil && *args.Repeat > 1 {
				n = *args.Repeat
			}
			out := ""
			for range n {
				out += args.Message
			}
			return out, nil
		}))
	tk.Add(toolcase.NewTool("current_time", "Return the current UTC time",
		func(_ context.Context, args clockArgs) (string, error) {
			now := time.Now().UTC()
			if args.Format == "unix" {
				return strconv.FormatInt(now.Unix(), 10), nil
			}
			return now.Format(time.RFC3339), nil
		}))
	tk.Add(toolcase.NewTool("generate_id", "Generate a random UUID",
		func(_ context.Context, _ idArgs) (string, error) {
			return uuid.NewString(), nil
		}))
	return tk
}
