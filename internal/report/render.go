// Package report renders an RcaReport into a fixed-width bordered text
// document. Rendering is a pure function over the report: the same input
// always yields byte-identical output, independent of platform or locale.
package report

import (
	"fmt"
	"strings"

	"github.com/shreyabiradar07/causa/internal/model"
)

const (
	// totalWidth is the full box width including both border glyphs.
	totalWidth = 86
	// contentWidth is the interior width between the border glyphs.
	contentWidth = totalWidth - 2
	// titleMaxLength is the maximum title length before truncation.
	titleMaxLength = 76
	// confidenceLabelWidth is the field width of the confidence value.
	confidenceLabelWidth = 60
	// maxWordLength is the longest unbroken token rendered on one line;
	// longer tokens are hard-wrapped into chunks of this size.
	maxWordLength = contentWidth - 2
)

// Render returns the fixed-width text document for the report. A nil report
// renders the same as a report with all fields empty: every body section
// degrades to an N/A placeholder and the confidence shows 0.00. Rendering
// never fails.
func Render(r *model.RcaReport) string {
	return "\n" + strings.Join(Lines(r), "\n") + "\n"
}

// Lines returns the rendered document as an immutable sequence of lines,
// each exactly totalWidth characters wide including both border glyphs.
func Lines(r *model.RcaReport) []string {
	if r == nil {
		r = &model.RcaReport{}
	}

	lines := []string{
		rule("╔", "╗"),
		padded(strings.Repeat(" ", 26) + "RCA REPORT"),
		rule("╠", "╣"),
		"║ Title: " + padRight(truncate(r.Title, titleMaxLength), titleMaxLength) + "║",
		rule("╠", "╣"),
		padded(" Issue Description:"),
	}
	lines = append(lines, wrap(r.Issue)...)
	lines = append(lines, rule("╠", "╣"), padded(" Evidence:"))
	lines = append(lines, wrap(r.Evidence)...)
	lines = append(lines, rule("╠", "╣"), padded(" Proposed Solution:"))
	lines = append(lines, wrap(r.ProposedSolution)...)

	if len(r.SupportedLogs) > 0 {
		lines = append(lines, rule("╠", "╣"), padded(" Supported Logs:"))
		for _, entry := range r.SupportedLogs {
			lines = append(lines, wrap("• "+entry)...)
		}
	}

	lines = append(lines,
		rule("╠", "╣"),
		fmt.Sprintf("║ Validation Confidence: %-*.2f║", confidenceLabelWidth, r.ValidationConfidence),
		rule("╚", "╝"),
	)
	return lines
}

// rule builds a horizontal border line between the given corner glyphs.
func rule(left, right string) string {
	return left + strings.Repeat("═", contentWidth) + right
}

// padded builds a content line from the given interior text, padded with
// spaces to the full box width and closed with both border glyphs.
func padded(interior string) string {
	return "║" + padRight(interior, contentWidth) + "║"
}

// padRight pads s with trailing spaces up to width characters. Widths are
// measured in runes so box glyphs count as one column each.
func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// truncate shortens s to at most max characters, replacing the tail with a
// three-dot marker when it overflows.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return s
}

// wrap renders one body section as bordered lines using word wrapping.
// Text is split on whitespace runs; each line carries a two-character left
// margin. A token is moved to a fresh line once appending it would reach or
// exceed the interior boundary, and tokens longer than maxWordLength are
// hard-wrapped into fixed-size chunks. Blank text yields a single N/A line.
func wrap(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{flush("║ N/A")}
	}

	var lines []string
	line := "║ "
	for _, word := range words {
		wlen := len([]rune(word))

		if wlen > maxWordLength {
			// Flush any pending partial line, then emit the token in
			// fixed-size chunks.
			if len([]rune(line)) > 2 {
				lines = append(lines, flush(line))
				line = "║ "
			}
			runes := []rune(word)
			for pos := 0; pos < len(runes); {
				end := pos + maxWordLength
				if end > len(runes) {
					end = len(runes)
				}
				lines = append(lines, flush(line+string(runes[pos:end])))
				line = "║ "
				pos = end
			}
			continue
		}

		if len([]rune(line))+wlen+1 >= totalWidth-1 {
			lines = append(lines, flush(line))
			line = "║ "
		}
		line += word + " "
	}

	if len([]rune(line)) > 2 {
		lines = append(lines, flush(line))
	}
	return lines
}

// flush pads a partial line to the interior boundary and closes the border.
func flush(line string) string {
	return padRight(line, totalWidth-1) + "║"
}
