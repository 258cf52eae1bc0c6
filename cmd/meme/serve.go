package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/gorewood/meme/internal/gallery"
	mememcp "github.com/gorewood/meme/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run meme as a Model Context Protocol (MCP) server over stdio.

This exposes the template gallery and the caption renderer as MCP tools for
any MCP-capable agent environment.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "meme": {
        "command": "meme",
        "args": ["serve"]
      }
    }
  }

Available tools: list_templates, render_meme, wrap_caption`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			g := gallery.New(cfg.Templates)
			if err := g.Probe(cmd.Context()); err != nil {
				return classify(err)
			}
			server := mememcp.NewServer(buildVersion(), mememcp.Deps{
				Gallery: g,
				Style:   cfg.Style,
			})
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
