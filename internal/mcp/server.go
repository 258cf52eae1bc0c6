// Package mcp provides a Model Context Protocol server for meme.
// It exposes the gallery and the compositor as tools an agent can call.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/meme/internal/compose"
	"github.com/gorewood/meme/internal/gallery"
)

// Deps is what the tools operate on.
type Deps struct {
	Gallery *gallery.Gallery
	Style   compose.Style // colors used when a call leaves one unset
}

// NewServer creates an MCP server with all meme tools registered.
func NewServer(version string, deps Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "meme",
		Version: version,
	}, nil)
	registerTools(server, deps)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for tools that touch nothing.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for tools that write an output file.
// Writing the same request twice produces the same file.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		IdempotentHint:  true,
		DestructiveHint: boolPtr(true),
		OpenWorldHint:   boolPtr(false),
	}
}

// registerTools adds all meme tools to the server.
func registerTools(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List the preset template images that loaded successfully, with the 1-based index to pass as template to render_meme.",
		Annotations: readOnlyAnnotations(),
	}, handleListTemplates(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_meme",
		Description: "Caption an image or a preset template with top/bottom text and write the result as PNG. Returns the canvas size and how each caption wrapped.",
		Annotations: writeAnnotations(),
	}, handleRenderMeme(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "wrap_caption",
		Description: "Preview how a caption wraps for a source image of the given width, without rendering.",
		Annotations: readOnlyAnnotations(),
	}, handleWrapCaption())
}
