package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/meme/internal/compose"
	"github.com/gorewood/meme/internal/gallery"
)

// --- List templates tool ---

// ListTemplatesInput is the input for the list_templates tool.
type ListTemplatesInput struct{}

// TemplateInfo describes one visible template.
type TemplateInfo struct {
	Index  int    `json:"index"  jsonschema:"1-based index to pass to render_meme"`
	Name   string `json:"name"   jsonschema:"display name"`
	Path   string `json:"path"   jsonschema:"image file path"`
	Width  int    `json:"width"  jsonschema:"source width in pixels"`
	Height int    `json:"height" jsonschema:"source height in pixels"`
}

// ListTemplatesOutput is the output for the list_templates tool.
type ListTemplatesOutput struct {
	Templates []TemplateInfo `json:"templates"        jsonschema:"templates that loaded"`
	Hidden    int            `json:"hidden,omitempty" jsonschema:"number of configured templates that failed to load"`
}

func handleListTemplates(deps Deps) mcp.ToolHandlerFor[ListTemplatesInput, ListTemplatesOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListTemplatesInput) (*mcp.CallToolResult, ListTemplatesOutput, error) {
		if deps.Gallery == nil {
			return nil, ListTemplatesOutput{Templates: []TemplateInfo{}}, nil
		}
		if err := deps.Gallery.Probe(ctx); err != nil {
			return nil, ListTemplatesOutput{}, fmt.Errorf("probing templates: %w", err)
		}

		visible := deps.Gallery.Visible()
		out := ListTemplatesOutput{
			Templates: make([]TemplateInfo, 0, len(visible)),
			Hidden:    len(deps.Gallery.All()) - len(visible),
		}
		for i, t := range visible {
			out.Templates = append(out.Templates, TemplateInfo{
				Index:  i + 1,
				Name:   t.Name,
				Path:   t.Path,
				Width:  t.Width,
				Height: t.Height,
			})
		}
		return nil, out, nil
	}
}

// --- Render tool ---

// RenderInput is the input for the render_meme tool.
type RenderInput struct {
	Image        string `json:"image,omitempty"         jsonschema:"path of the base image (PNG, JPEG, GIF, BMP or WebP)"`
	Template     int    `json:"template,omitempty"      jsonschema:"1-based template index from list_templates, used when image is empty"`
	Top          string `json:"top,omitempty"           jsonschema:"top caption"`
	Bottom       string `json:"bottom,omitempty"        jsonschema:"bottom caption"`
	TopFill      string `json:"top_fill,omitempty"      jsonschema:"top text color as #RRGGBB"`
	TopStroke    string `json:"top_stroke,omitempty"    jsonschema:"top outline color as #RRGGBB"`
	BottomFill   string `json:"bottom_fill,omitempty"   jsonschema:"bottom text color as #RRGGBB"`
	BottomStroke string `json:"bottom_stroke,omitempty" jsonschema:"bottom outline color as #RRGGBB"`
	Out          string `json:"out,omitempty"           jsonschema:"output PNG path or directory (default meme.png)"`
}

// SlotOutput is how one caption was drawn.
type SlotOutput struct {
	Slot   string   `json:"slot"   jsonschema:"top or bottom"`
	Lines  []string `json:"lines"  jsonschema:"wrapped lines, top to bottom"`
	Fill   string   `json:"fill"   jsonschema:"fill color"`
	Stroke string   `json:"stroke" jsonschema:"outline color"`
}

// RenderOutput is the output for the render_meme tool.
type RenderOutput struct {
	Path   string       `json:"path"            jsonschema:"PNG file written"`
	Source string       `json:"source"          jsonschema:"image the meme was built on"`
	Width  int          `json:"width"           jsonschema:"canvas width"`
	Height int          `json:"height"          jsonschema:"canvas height"`
	Slots  []SlotOutput `json:"slots,omitempty" jsonschema:"captions drawn"`
}

func handleRenderMeme(deps Deps) mcp.ToolHandlerFor[RenderInput, RenderOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RenderInput) (*mcp.CallToolResult, RenderOutput, error) {
		style, err := applyColors(deps.Style, input)
		if err != nil {
			return nil, RenderOutput{}, err
		}

		st := compose.NewState()
		st.Style = style
		st.Captions = compose.Captions{Top: input.Top, Bottom: input.Bottom}

		switch {
		case input.Image != "":
			st.Source, err = loadSource(ctx, filepath.Base(input.Image), input.Image)
		case input.Template > 0:
			if deps.Gallery == nil {
				return nil, RenderOutput{}, fmt.Errorf("%w: %d", gallery.ErrNoSuchTemplate, input.Template)
			}
			// Indexes count loaded templates only, as list_templates shows them.
			if err = deps.Gallery.Probe(ctx); err != nil {
				return nil, RenderOutput{}, fmt.Errorf("probing templates: %w", err)
			}
			var tmpl gallery.Template
			tmpl, err = deps.Gallery.Lookup(input.Template)
			if err == nil {
				st.Source, err = loadSource(ctx, tmpl.Name, tmpl.Path)
			}
		default:
			err = errNoImage
		}
		if err != nil {
			return nil, RenderOutput{}, err
		}

		// Each call renders on its own compositor so concurrent calls never
		// export each other's preview.
		comp := compose.New()
		preview, err := comp.Render(st)
		if err != nil {
			return nil, RenderOutput{}, fmt.Errorf("rendering: %w", err)
		}
		path, err := comp.ExportFile(input.Out)
		if err != nil {
			return nil, RenderOutput{}, fmt.Errorf("exporting: %w", err)
		}

		return nil, RenderOutput{
			Path:   path,
			Source: st.Source.Name(),
			Width:  preview.Layout.Width,
			Height: preview.Layout.Height,
			Slots:  slotOutputs(preview.Layout),
		}, nil
	}
}

// --- Wrap tool ---

// WrapInput is the input for the wrap_caption tool.
type WrapInput struct {
	Text        string `json:"text"                   jsonschema:"caption text"`
	SourceWidth int    `json:"source_width,omitempty" jsonschema:"width of the base image in pixels (default 800)"`
}

// WrapOutput is the output for the wrap_caption tool.
type WrapOutput struct {
	Lines       []string `json:"lines"        jsonschema:"wrapped lines; empty when the caption would not be drawn"`
	CanvasWidth int      `json:"canvas_width" jsonschema:"canvas width the caption was wrapped for"`
	FontSize    float64  `json:"font_size"    jsonschema:"caption font size in pixels"`
}

func handleWrapCaption() mcp.ToolHandlerFor[WrapInput, WrapOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input WrapInput) (*mcp.CallToolResult, WrapOutput, error) {
		width := input.SourceWidth
		if width == 0 {
			width = compose.MaxCanvasWidth
		}
		if width < 0 {
			return nil, WrapOutput{}, errors.New("source_width must be positive")
		}

		lines, err := compose.WrapForWidth(input.Text, width)
		if err != nil {
			return nil, WrapOutput{}, err
		}
		if lines == nil {
			lines = []string{}
		}
		canvasWidth, _ := compose.CanvasSize(width, 1)
		return nil, WrapOutput{
			Lines:       lines,
			CanvasWidth: canvasWidth,
			FontSize:    compose.FontSize(canvasWidth),
		}, nil
	}
}
