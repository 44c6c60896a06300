// Package runtime implements the service runtime & tool dispatch layer
// (spec §4.1): a uniform registry of named tools exposed over HTTP and
// stdio, shared by every concrete service process. Grounded on the
// original Python tools/mcp/core/base_server.py (BaseMCPServer.execute_tool,
// ToolRequest argument aliasing) and on the teacher's
// internal/aggregator/server.go mcp-go server construction for the stdio
// transport.
package runtime

import (
	"context"
	"fmt"
	"sync"

	"terrainforge/internal/apperr"
	"terrainforge/pkg/logging"
)

const subsystem = "runtime"

// ParameterSchema is a JSON-Schema subset describing a tool's arguments:
// an object with named properties, each with a type, optional default,
// optional enum, and a required list.
type ParameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties,omitempty"`
	Required   []string                  `json:"required,omitempty"`
}

// PropertySchema describes one parameter.
type PropertySchema struct {
	Type        string        `json:"type"`
	Description string        `json:"description,omitempty"`
	Default     interface{}   `json:"default,omitempty"`
	Enum        []interface{} `json:"enum,omitempty"`
}

// Descriptor is an immutable tool descriptor, registered at service start
// and never mutated afterward (spec §3 Tool descriptor).
type Descriptor struct {
	Name        string
	Description string
	Parameters  ParameterSchema
}

// Handler executes one tool invocation. It returns a result value (any
// JSON-marshalable structure) or an error. If the result is a map with a
// boolean "success" key, that value is surfaced as the envelope's success
// field (spec §4.1 Dispatch discipline); otherwise success is true whenever
// err is nil.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Envelope is the uniform request/response wrapper for tool invocations
// (spec §3).
type Envelope struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   *string     `json:"error,omitempty"`
}

// Registry holds the set of tools a concrete service publishes. There is no
// cross-request state in the runtime itself (spec §4.1); any state lives in
// the components a Handler closes over.
type Registry struct {
	name    string
	version string

	mu       sync.RWMutex
	tools    map[string]Descriptor
	handlers map[string]Handler
}

// NewRegistry constructs an empty Registry for a service identified by name
// and version (surfaced in /health).
func NewRegistry(name, version string) *Registry {
	return &Registry{
		name:     name,
		version:  version,
		tools:    make(map[string]Descriptor),
		handlers: make(map[string]Handler),
	}
}

// Register publishes a tool descriptor and its handler. Intended to be
// called at startup only; Register is safe to call concurrently but the
// runtime assumes registration completes before traffic is served.
func (r *Registry) Register(desc Descriptor, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[desc.Name] = desc
	r.handlers[desc.Name] = handler
}

// Tools returns all registered descriptors.
func (r *Registry) Tools() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.tools))
	for _, d := range r.tools {
		out = append(out, d)
	}
	return out
}

// Dispatch invokes the named tool with args, applying the dispatch
// discipline from spec §4.1: unknown tool -> success=false envelope (never
// a Go error bubbled to the HTTP layer as a transport failure); handler
// panic/error -> success=false with the error message; a handler result
// carrying its own "success" key is surfaced verbatim.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]interface{}) Envelope {
	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		msg := fmt.Sprintf("Unknown tool: %s", name)
		logging.Warn(subsystem, "%s", msg)
		return Envelope{Success: false, Error: &msg}
	}

	result, err := r.safeInvoke(ctx, handler, args)
	if err != nil {
		msg := err.Error()
		logging.Error(subsystem, err, "tool %q failed", name)
		return Envelope{Success: false, Error: &msg}
	}

	if asMap, ok := result.(map[string]interface{}); ok {
		if success, has := asMap["success"]; has {
			if b, ok := success.(bool); ok && !b {
				msg := extractErrorMessage(asMap, name)
				return Envelope{Success: false, Result: result, Error: &msg}
			}
		}
	}

	return Envelope{Success: true, Result: result}
}

// safeInvoke recovers from a handler panic and converts it to an error, so
// a single misbehaving tool can never crash the process (spec §7
// Propagation policy).
func (r *Registry) safeInvoke(ctx context.Context, handler Handler, args map[string]interface{}) (result interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("tool handler panicked: %v", p)
		}
	}()
	return handler(ctx, args)
}

func extractErrorMessage(asMap map[string]interface{}, name string) string {
	if e, ok := asMap["error"]; ok {
		if s, ok := e.(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("tool %q reported failure", name)
}

// ResolveArguments implements the arguments/parameters aliasing rule from
// spec §6: "arguments" and "parameters" are accepted as aliases; if both
// are present, "arguments" wins.
func ResolveArguments(arguments, parameters map[string]interface{}) map[string]interface{} {
	if arguments != nil {
		return arguments
	}
	if parameters != nil {
		return parameters
	}
	return map[string]interface{}{}
}

// UnknownToolError wraps apperr.ErrUnknownTool with the tool name, for
// callers that need a Go error rather than an envelope.
func UnknownToolError(name string) error {
	return fmt.Errorf("%w: %s", apperr.ErrUnknownTool, name)
}
