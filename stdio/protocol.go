package stdio

import (
	"encoding/json"

	"github.com/toolcase/toolcase"
)

// Protocol methods handled by the server.
const (
	MethodInitialize = "initialize"
	MethodPing       = "ping"
	MethodListTools  = "tools/list"
	MethodCallTool   = "tools/call"
)

// notificationPrefix marks one-way messages that never receive a reply.
const notificationPrefix = "notifications/"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// request is one incoming JSON-RPC message. ID is kept raw so string and
// numeric ids echo back byte-identically; a nil ID marks a notification.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r request) isNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

// response is one outgoing JSON-RPC message.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// initializeResult advertises the server to the connecting client.
type initializeResult struct {
	ProtocolVersion string       `json:"protocol_version"`
	ServerInfo      serverInfo   `json:"server_info"`
	Capabilities    capabilities `json:"capabilities"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type capabilities struct {
	Tools struct{} `json:"tools"`
}

// callParams are the parameters of a tools/call request.
type callParams struct {
	Name      string               `json:"name"`
	Arguments map[string]any       `json:"arguments"`
	Context   toolcase.ToolContext `json:"context"`
}

// listResult is the reply to tools/list: the schema surface a calling
// framework consumes to know what it may call.
type listResult struct {
	Tools []toolEntry `json:"tools"`
}

type toolEntry struct {
	Name         string         `json:"name"`
	Toolkit      string         `json:"toolkit"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"input_schema"`
	RequiresAuth bool           `json:"requires_auth"`
}
