// Package main provides the entry point for the meme CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"github.com/gorewood/meme/internal/config"
	"github.com/gorewood/meme/internal/gallery"
	"github.com/gorewood/meme/internal/logging"
	"github.com/gorewood/meme/internal/output"
	"github.com/gorewood/meme/internal/source"
)

// Build info set via ldflags at build time by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// useColor resolves --color against the command's output stream.
func useColor(cmd *cobra.Command) bool {
	mode := "auto"
	if flag := cmd.Root().PersistentFlags().Lookup("color"); flag != nil {
		mode = flag.Value.String()
	}
	return output.ResolveColorMode(mode, output.IsTTY(cmd.OutOrStdout()))
}

// newPrinter returns the printer every command writes through.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the meme CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meme",
		Short: "Caption images with classic top and bottom meme text",
		Long: `meme - put outlined top and bottom captions on an image and save it as PNG.

Pick an image file or one of the preset templates, add captions, choose fill
and outline colors, and export. Captions wrap to the image width and are drawn
in bold white-on-black by default.

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'meme --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("color", "auto", "Colorize output: auto, always or never")
	cmd.PersistentFlags().String("log-level", "warn", "Diagnostics on stderr: debug, info, warn or error")
	cmd.PersistentFlags().String("config", "", "Config file (default "+config.FileName+" in the meme config directory)")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// setupLogging installs the stderr logger at --log-level, for meme and for
// the gg renderer.
func setupLogging(cmd *cobra.Command) error {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(raw)
	if err != nil {
		userErr := output.UserErrorf(err, "%v", err)
		newPrinter(cmd).Error(userErr)
		return userErr
	}
	logger := logging.NewTextLogger(cmd.ErrOrStderr(), level)
	logging.SetLogger(logger)
	gg.SetLogger(logger)
	return nil
}

// loadConfig reads the file named by --config, or the default config file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, output.UserErrorf(err, "%v", err)
	}
	return cfg, nil
}

// classify attaches an exit code to an error from the library packages.
// Bad input (missing or undecodable image, unknown template) is the user's;
// anything else is a system failure.
func classify(err error) error {
	var exitErr *output.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return err
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, source.ErrUnsupportedFormat),
		errors.Is(err, source.ErrEmptyImage),
		errors.Is(err, gallery.ErrNoSuchTemplate):
		return output.UserErrorf(err, "%v", err)
	default:
		return output.NewSystemErrorWithCause(err.Error(), err)
	}
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "compose", Title: "Compose Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newRenderCmd(), "compose")
	addGroupedCommand(cmd, newTemplatesCmd(), "compose")
	addGroupedCommand(cmd, newShellCmd(), "compose")

	addGroupedCommand(cmd, newServeCmd(), "agent")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
