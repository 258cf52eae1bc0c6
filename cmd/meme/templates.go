package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gorewood/meme/internal/gallery"
)

// templateRow is one gallery entry in command output.
type templateRow struct {
	Index  int    `json:"index,omitempty"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	Status string `json:"status"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// newTemplatesCmd creates the templates command.
func newTemplatesCmd() *cobra.Command {
	var allFlag bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the preset template images",
		Long: `List the preset template images configured for meme.

Every template is loaded first; templates whose image is missing or cannot be
decoded are left out of the list. Use the index with 'meme render --template'.

Examples:
  meme templates         # Templates ready to use
  meme templates --all   # Include hidden templates and why they failed
  meme templates --json  # Machine-readable list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTemplates(cmd, allFlag)
		},
	}
	cmd.Flags().BoolVarP(&allFlag, "all", "a", false, "Include templates that failed to load")
	return cmd
}

// runTemplates executes the templates command.
func runTemplates(cmd *cobra.Command, all bool) error {
	printer := newPrinter(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}
	g := gallery.New(cfg.Templates)
	if err := g.Probe(cmd.Context()); err != nil {
		err = classify(err)
		printer.Error(err)
		return err
	}

	rows := templateRows(g, all)
	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"templates": rows})
	}

	if len(rows) == 0 {
		printer.Println("No templates available.")
		return nil
	}

	headers := []string{"#", "NAME", "SIZE", "PATH"}
	if all {
		headers = append(headers, "STATUS")
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		index, size := "-", "-"
		if r.Index > 0 {
			index = strconv.Itoa(r.Index)
			size = fmt.Sprintf("%dx%d", r.Width, r.Height)
		}
		row := []string{index, r.Name, size, r.Path}
		if all {
			status := r.Status
			if r.Reason != "" {
				status += ": " + r.Reason
			}
			row = append(row, status)
		}
		table = append(table, row)
	}
	printer.Table(headers, table)
	return nil
}

// templateRows numbers visible templates from 1 in configured order. Hidden
// templates carry no index and are only included when all is set.
func templateRows(g *gallery.Gallery, all bool) []templateRow {
	rows := []templateRow{}
	index := 0
	for _, t := range g.All() {
		row := templateRow{
			Name:   t.Name,
			Path:   t.Path,
			Status: t.Status.String(),
			Width:  t.Width,
			Height: t.Height,
			Reason: t.Reason,
		}
		if t.Visible() {
			index++
			row.Index = index
		} else if !all {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
