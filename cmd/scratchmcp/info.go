package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newInfoCmd implements "scratchmcp info": prints transport/tool summary
// and, with a flag, an MCP client configuration snippet.
func newInfoCmd() *cobra.Command {
	var opencode, claude, cursor bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print server and MCP client configuration information",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case opencode:
				printClientConfig(cmd, "OpenCode", ".opencode.json or opencode.json")
			case claude:
				printClientConfig(cmd, "Claude Desktop", "claude_desktop_config.json")
			case cursor:
				printClientConfig(cmd, "Cursor", ".cursor/mcp.json")
			default:
				printGeneralInfo(cmd)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opencode, "opencode", false, "show OpenCode MCP client configuration")
	cmd.Flags().BoolVar(&claude, "claude", false, "show Claude Desktop MCP client configuration")
	cmd.Flags().BoolVar(&cursor, "cursor", false, "show Cursor MCP client configuration")
	return cmd
}

func printGeneralInfo(cmd *cobra.Command) {
	fmt.Fprintf(cmd.OutOrStdout(), `scratchmcp %s — durable, multi-tenant scratchpad storage for MCP clients

TRANSPORT MODES

  stdio (default)
    Communicates over stdin/stdout using JSON-RPC 2.0. Used when launched
    as a subprocess by an MCP client. Single-tenant per process unless
    auth.enable_auth is set, in which case the first configured principal
    is used.

  http
    Runs as a standalone HTTP server (MCP Streamable HTTP transport,
    spec 2025-03-26). Clients send a bearer token identifying their
    tenant in the Authorization header.

    Endpoint:      POST %s
    SSE stream:    GET  %s (if enabled)
    Metrics:       GET  %s (if enabled)
    Health check:  GET  /health

TOOLS

  Pads:       scratch_create, scratch_read, scratch_list, scratch_delete
  Cells:      scratch_list_cells, scratch_append_cell, scratch_replace_cell
  Validation: scratch_validate
  Search:     scratch_search
  Tags:       scratch_list_tags
  Schemas:    scratch_upsert_schema, scratch_get_schema, scratch_list_schemas
  Namespaces: scratch_namespace_create, scratch_namespace_list,
              scratch_namespace_delete, scratch_namespace_rename

CLIENT CONFIGURATION

  To see configuration for a specific MCP client, run:

    scratchmcp info --opencode
    scratchmcp info --claude
    scratchmcp info --cursor
`, Version, "/http", "/sse", "/metrics")
}

func printClientConfig(cmd *cobra.Command, client, file string) {
	fmt.Fprintf(cmd.OutOrStdout(), `%s — stdio mode

Add to %s:

{
  "mcpServers": {
    "scratchmcp": {
      "command": "scratchmcp"
    }
  }
}

%s — HTTP mode (remote server)

Add to %s:

{
  "mcpServers": {
    "scratchmcp": {
      "type": "streamable-http",
      "url": "http://your-scratchmcp-server:8787/http",
      "headers": {
        "Authorization": "Bearer your_token_here"
      }
    }
  }
}
`, client, file, client, file)
}
