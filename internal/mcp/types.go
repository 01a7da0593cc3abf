// Package mcp holds the shared configuration types for connecting to
// Model Context Protocol servers. The connection, discovery, and
// invocation logic itself lives in internal/tools (MCPClient), which
// registers discovered tools into the action router's tool catalogue —
// see DESIGN.md for why the teacher's Host interface and budget-tier
// concept were dropped in favor of the spec's policy+cache model.
package mcp

// Transport selects the connection mechanism for an MCP server.
type Transport string

const (
	// TransportStdio spawns a subprocess and communicates over stdin/stdout.
	TransportStdio Transport = "stdio"

	// TransportStreamableHTTP communicates via the MCP Streamable HTTP protocol.
	TransportStreamableHTTP Transport = "streamable-http"
)

// IsValid reports whether t is a recognised transport.
func (t Transport) IsValid() bool {
	return t == TransportStdio || t == TransportStreamableHTTP
}

// ServerConfig describes how to connect to a single MCP server.
type ServerConfig struct {
	// Name is the human-readable identifier for this server. Must be unique
	// within a single [tools.MCPClient]. Used in log messages and errors.
	Name string

	// Transport specifies the connection mechanism.
	Transport Transport

	// Command is the executable path (and optional space-separated
	// arguments) used when Transport is [TransportStdio]. Ignored otherwise.
	Command string

	// URL is the endpoint address used when Transport is
	// [TransportStreamableHTTP]. Ignored otherwise.
	URL string

	// Env holds additional environment variables injected into the server
	// process when Transport is [TransportStdio]. May be nil.
	Env map[string]string
}
