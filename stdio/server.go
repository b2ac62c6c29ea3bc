package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/toolcase/toolcase"
)

const (
	// queueSize buffers the read and write channels. Sized for a single
	// client; backpressure beyond it blocks the reader, which is acceptable
	// over stdio.
	queueSize = 64

	// maxLineBytes caps a single request line.
	maxLineBytes = 10 * 1024 * 1024

	protocolVersion = "2025-03-26"
)

// Server serves the line-oriented protocol over a pair of streams,
// dispatching requests to a catalog and executor.
type Server struct {
	catalog  *toolcase.Catalog
	executor *toolcase.Executor
	in       io.Reader
	out      io.Writer
	logger   *slog.Logger
	name     string
	version  string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger. Log output must not share the
// transport's stdout; callers should log to stderr or a file.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithStreams overrides the input and output streams (defaults: os.Stdin,
// os.Stdout). Mainly for tests and embedding.
func WithStreams(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// WithServerInfo sets the name and version advertised on initialize.
func WithServerInfo(name, version string) Option {
	return func(s *Server) {
		s.name = name
		s.version = version
	}
}

// New creates a stdio server over the given catalog and executor.
func New(catalog *toolcase.Catalog, executor *toolcase.Executor, opts ...Option) *Server {
	s := &Server{
		catalog:  catalog,
		executor: executor,
		in:       os.Stdin,
		out:      os.Stdout,
		logger:   slog.Default(),
		name:     "toolcase",
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve runs the read/dispatch/write pipeline until the input stream ends or
// ctx is cancelled. Both the reader and writer goroutines are started before
// any message is handled and joined before Serve returns; closing the write
// channel is the last event on it, so every queued response is flushed.
//
// When ctx is cancelled, any input still arriving is read and discarded so
// the reader never stays parked on a full channel; the reader goroutine
// itself exits only once the stream closes. Callers that cancel must also
// close their end of the stream.
func (s *Server) Serve(ctx context.Context) error {
	readCh := make(chan string, queueSize)
	writeCh := make(chan string, queueSize)
	writerDone := make(chan struct{})

	go readLines(s.in, readCh)
	go writeLines(s.out, writeCh, writerDone)
	s.logger.InfoContext(ctx, "stdio server started", "server", s.name, "version", s.version)

	var wg sync.WaitGroup
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-readCh:
			if !ok {
				break loop
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			wg.Go(func() {
				if reply := s.handle(ctx, line); reply != "" {
					writeCh <- reply
				}
			})
		}
	}
	// Discard whatever the reader still queues; without this a cancelled
	// server leaves the reader blocked on the send side once the buffer
	// fills. The drain ends when readLines closes the channel.
	go func() {
		for range readCh {
		}
	}()
	wg.Wait()
	close(writeCh)
	<-writerDone
	return ctx.Err()
}

// readLines pulls lines from r into out and closes out at end of stream.
// The closed channel is the shutdown sentinel for the dispatch loop.
func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		out <- sc.Text()
	}
}

// writeLines drains in to w, appending a trailing newline when a message
// lacks one and flushing after every message. It stops when in closes, not
// when the stream does, so already-queued output is never dropped.
func writeLines(w io.Writer, in <-chan string, done chan<- struct{}) {
	defer close(done)
	bw := bufio.NewWriter(w)
	for msg := range in {
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		if _, err := bw.WriteString(msg); err != nil {
			return
		}
		if err := bw.Flush(); err != nil {
			return
		}
	}
}

// handle processes one request line and returns the encoded reply, or ""
// when the message is a notification.
func (s *Server) handle(ctx context.Context, line string) string {
	var req request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.logger.WarnContext(ctx, "dropping unparseable message", "error", err)
		return encodeResponse(response{
			JSONRPC: "2.0",
			ID:      json.RawMessage("null"),
			Error:   &rpcError{Code: codeParseError, Message: "parse error: " + err.Error()},
		})
	}
	if strings.HasPrefix(req.Method, notificationPrefix) || req.isNotification() {
		return ""
	}

	resp := response{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case MethodInitialize:
		resp.Result = initializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		}
	case MethodPing:
		resp.Result = struct{}{}
	case MethodListTools:
		resp.Result = s.listTools()
	case MethodCallTool:
		result, rpcErr := s.callTool(ctx, req.Params)
		resp.Result = result
		resp.Error = rpcErr
	default:
		resp.Error = &rpcError{Code: codeMethodNotFound, Message: "method not found: " + req.Method}
	}
	return encodeResponse(resp)
}

func (s *Server) listTools() listResult {
	entries := s.catalog.List("")
	out := listResult{Tools: make([]toolEntry, 0, len(entries))}
	for _, m := range entries {
		out.Tools = append(out.Tools, toolEntry{
			Name:         m.Definition.FullyQualifiedName,
			Toolkit:      m.Definition.Toolkit.Name,
			Description:  m.Definition.Description,
			InputSchema:  m.Tool.InputSchema(),
			RequiresAuth: m.RequiresAuth(),
		})
	}
	return out
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	var p callParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	if p.Name == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params: name is required"}
	}
	resp, err := s.executor.Call(ctx, toolcase.CallRequest{
		ToolName: p.Name,
		Inputs:   p.Arguments,
		Context:  p.Context,
	})
	if err != nil {
		if errors.Is(err, toolcase.ErrToolNotFound) {
			return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
		return nil, &rpcError{Code: codeInternalError, Message: err.Error()}
	}
	return resp, nil
}

func encodeResponse(resp response) string {
	data, err := json.Marshal(resp)
	if err != nil {
		// Marshaling our own response types cannot fail with well-formed
		// results; treat it as an internal fault with a static reply.
		return `{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"internal error"}}`
	}
	return string(data)
}
