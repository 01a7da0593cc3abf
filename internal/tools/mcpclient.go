package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nullshift/vocalops/internal/mcp"
	"github.com/nullshift/vocalops/pkg/types"
)

// MCPClient connects to externally-hosted MCP servers and registers their
// tool catalogues into a [Registry]. Adapted from the teacher's
// `internal/mcp/mcphost.Host`: same connect/discover/invoke sequence via
// the official SDK, stripped of the budget-tier/calibration concept (spec
// §4.9 replaces latency tiers with policy+cache, see DESIGN.md).
type MCPClient struct {
	mu      sync.Mutex
	client  *mcpsdk.Client
	servers map[string]*mcpsdk.ClientSession
}

// NewMCPClient returns a client identifying itself to servers as name/version.
func NewMCPClient(name, version string) *MCPClient {
	return &MCPClient{
		client:  mcpsdk.NewClient(&mcpsdk.Implementation{Name: name, Version: version}, nil),
		servers: make(map[string]*mcpsdk.ClientSession),
	}
}

// RegisterServer connects to the MCP server described by cfg, discovers its
// tools, and registers each into registry with the given policy. policyFor
// supplies the [types.ToolPolicy] for a discovered tool name — policies
// come from the user manifest, not the server, per spec §4.9.
func (c *MCPClient) RegisterServer(ctx context.Context, cfg mcp.ServerConfig, registry *Registry, policyFor func(name string) types.ToolPolicy) error {
	if cfg.Name == "" {
		return fmt.Errorf("tools: mcp server config must have a non-empty name")
	}
	if !cfg.Transport.IsValid() {
		return fmt.Errorf("tools: unknown transport %q for server %q", cfg.Transport, cfg.Name)
	}

	var transport mcpsdk.Transport
	switch cfg.Transport {
	case mcp.TransportStdio:
		executable, args := splitCommand(cfg.Command)
		if executable == "" {
			return fmt.Errorf("tools: stdio server %q requires a non-empty Command", cfg.Name)
		}
		cmd := exec.CommandContext(ctx, executable, args...)
		for k, v := range cfg.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		transport = &mcpsdk.CommandTransport{Command: cmd}
	case mcp.TransportStreamableHTTP:
		if cfg.URL == "" {
			return fmt.Errorf("tools: streamable-http server %q requires a non-empty URL", cfg.Name)
		}
		transport = &mcpsdk.StreamableClientTransport{Endpoint: cfg.URL}
	}

	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("tools: connect to mcp server %q: %w", cfg.Name, err)
	}

	var discovered []mcpsdk.Tool
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			_ = session.Close()
			return fmt.Errorf("tools: list tools for mcp server %q: %w", cfg.Name, err)
		}
		discovered = append(discovered, *tool)
	}

	c.mu.Lock()
	if old, ok := c.servers[cfg.Name]; ok {
		_ = old.Close()
	}
	c.servers[cfg.Name] = session
	c.mu.Unlock()

	for _, t := range discovered {
		def := types.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaToMap(t.InputSchema),
		}
		serverName := cfg.Name
		toolName := t.Name
		handler := func(ctx context.Context, args map[string]types.ArgValue) (any, error) {
			return c.callTool(ctx, serverName, toolName, args)
		}
		if err := registry.Register(def, policyFor(t.Name), handler); err != nil {
			return fmt.Errorf("tools: register mcp tool %q: %w", t.Name, err)
		}
	}
	return nil
}

func (c *MCPClient) callTool(ctx context.Context, server, name string, args map[string]types.ArgValue) (any, error) {
	c.mu.Lock()
	session, ok := c.servers[server]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("tools: mcp server %q not found for tool %q", server, name)
	}

	argsMap := make(map[string]any, len(args))
	for k, v := range args {
		argsMap[k] = argValueToAny(v)
	}

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: argsMap})
	if err != nil {
		return nil, fmt.Errorf("tools: call mcp tool %q: %w", name, err)
	}

	var sb strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	if result.IsError {
		return nil, fmt.Errorf("tools: mcp tool %q returned an error: %s", name, sb.String())
	}
	return sb.String(), nil
}

// Close shuts down every server connection.
func (c *MCPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for name, session := range c.servers {
		if err := session.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("tools: close mcp server %q: %w", name, err)
		}
		delete(c.servers, name)
	}
	return firstErr
}

func splitCommand(command string) (executable string, args []string) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

func schemaToMap(schema any) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object"}
	}
	if m, ok := schema.(map[string]any); ok {
		return m
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}
