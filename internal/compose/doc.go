// Package compose renders meme previews and exports them as PNG.
//
// A render reads a State (source image, two captions, four colors) and
// produces a Preview:
//
//	comp := compose.New()
//	st := compose.NewState()
//	st.Source = img
//	st.Captions = st.Captions.Set(compose.Top, "one does not simply")
//	preview, err := comp.Render(st)
//	path, err := comp.ExportFile("") // writes meme.png
//
// # Canvas
//
// The canvas is as wide as the source, capped at MaxCanvasWidth, and keeps
// the source aspect ratio. The source is scaled to fill it exactly.
//
// # Captions
//
// Each non-empty caption is set in Go Bold at FontSize(width) pixels and
// wrapped greedily with Wrap to width-2*Padding. The top caption hangs from
// Padding, the bottom caption stands on height-Padding; multi-line blocks are
// centered on those anchors. Every line is stroked first and then filled on
// the identical glyph path.
//
// # Export
//
// Export and ExportFile encode the most recent preview. Before the first
// successful render they do nothing.
package compose
