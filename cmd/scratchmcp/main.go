// Command scratchmcp runs the scratch-notebook MCP server.
//
// It communicates over stdio using JSON-RPC 2.0 (MCP protocol), with an
// optional Streamable HTTP transport, and persists everything to a local
// embedded bbolt dataset — no external services required.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scratchmcp: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "scratchmcp",
		Short:         "Durable, multi-tenant scratchpad storage for MCP clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Bare invocation (the common case: launched as an MCP client
		// subprocess) runs the server directly, same as "scratchmcp serve".
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to scratchmcp.toml (default: $SCRATCHMCP_CONFIG, ./scratchmcp.toml, or ~/.config/scratchmcp/scratchmcp.toml)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newUpgradeCmd())
	root.AddCommand(newRollbackCmd())

	return root
}

func newUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "upgrade",
		Short:              "Download and install the latest scratchmcp release",
		DisableFlagParsing: true,
		Run: func(cmd *cobra.Command, args []string) {
			handleUpgradeCommand(args)
		},
	}
}

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Restore the previous scratchmcp binary from backup",
		Run: func(cmd *cobra.Command, args []string) {
			handleRollbackCommand()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
			return nil
		},
	}
}
