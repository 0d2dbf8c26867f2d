package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as a Markdown document with two tables.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l10n.T("Playback Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", l10n.T("Generated"), s.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))

	r := s.Result
	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Results"))
	table(&b, [][2]string{
		{l10n.T("Source"), s.Source},
		{l10n.T("Status"), r.Status},
		{l10n.T("Failed Stage"), orNone(r.Stage)},
		{l10n.T("Error"), orNone(r.Error)},
		{l10n.T("Codec"), orNone(r.Codec)},
		{l10n.T("Frames Rendered"), fmt.Sprint(r.Frames)},
		{l10n.T("Frames Behind Schedule"), fmt.Sprint(r.Behind)},
		{l10n.T("Total Overrun"), formatDuration(r.Overrun)},
		{l10n.T("Packets Discarded"), fmt.Sprint(r.Discarded)},
		{l10n.T("Interrupted"), yesNo(r.Interrupted)},
		{l10n.T("Elapsed"), formatDuration(r.Elapsed)},
	})

	st := s.Settings
	interval := l10n.T("Unpaced")
	if st.Interval > 0 {
		interval = formatDuration(st.Interval)
	}
	limit := l10n.T("None")
	if st.MaxDuration > 0 {
		limit = formatDuration(st.MaxDuration)
	}
	fmt.Fprintf(&b, "\n## %s\n\n", l10n.T("Settings"))
	table(&b, [][2]string{
		{l10n.T("Grid (columns x rows)"), fmt.Sprintf("%dx%d", st.Cols, st.Rows)},
		{l10n.T("Colour Mode"), st.ColorMode},
		{l10n.T("Glyph Ramp"), fmt.Sprintf(l10n.T("%d glyphs"), st.RampLength)},
		{l10n.T("Frame Interval"), interval},
		{l10n.T("Time Limit"), limit},
	})

	return b.String()
}

func table(b *strings.Builder, rows [][2]string) {
	fmt.Fprintf(b, "| %s | %s |\n", l10n.T("Item"), l10n.T("Value"))
	b.WriteString("|------|-------|\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", row[0], escapeCell(row[1]))
	}
}

// escapeCell keeps a value on one table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f s", d.Seconds())
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return l10n.T("Yes")
	}
	return l10n.T("No")
}

var _ Formatter = (*MarkdownFormatter)(nil)
