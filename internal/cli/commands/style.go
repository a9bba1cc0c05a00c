package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ccollicutt/hitlog/pkg/output"
)

var (
	styleTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true) // cyan
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))           // gray
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))            // green
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))           // yellow
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
)

const bannerWidth = 68

// printBanner writes the application banner.
func printBanner(w io.Writer) {
	rule := strings.Repeat("=", bannerWidth)
	title := lipgloss.PlaceHorizontal(bannerWidth, lipgloss.Center, output.AppName)
	fmt.Fprintln(w, styleTitle.Render(rule))
	fmt.Fprintln(w, styleTitle.Render(title))
	fmt.Fprintln(w, styleTitle.Render(rule))
	fmt.Fprintln(w, styleInfo.Render("Accepts .log, .txt, .gz | Ctrl+C safe"))
	fmt.Fprintln(w)
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleInfo.Render(fmt.Sprintf(format, args...)))
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render(fmt.Sprintf(format, args...)))
}

func printWarn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleWarn.Render(fmt.Sprintf(format, args...)))
}

// FormatError renders an error line for the terminal.
func FormatError(err error) string {
	return styleError.Render("Error: " + err.Error())
}

// FormatCanceled renders the cancellation notice.
func FormatCanceled() string {
	return styleWarn.Render("Analysis cancelled by user. No report was written.")
}

// groupDigits formats n with comma thousands separators, e.g. 200,000.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
