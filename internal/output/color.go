package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// ResolveColorMode applies the --color flag ("never", "always" or "auto")
// to the detected terminal state.
func ResolveColorMode(colorMode string, isTTY bool) bool {
	switch colorMode {
	case "never":
		return false
	case "always":
		return true
	default:
		return isTTY
	}
}

// IsTTY reports whether writer is a terminal.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

// Swatch renders a caption color as a colored block followed by its hex
// code. Without a terminal only the hex code is printed.
func (p *Printer) Swatch(hex string) string {
	if !p.isTTY {
		return hex
	}
	chip := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
	return chip + " " + hex
}
