package profile

import (
	"strings"

	"github.com/hbjs97/vagrant-shim/internal/shell"
)

// Span is the inclusive line range [Start, End] of one generated block.
type Span struct {
	Start int
	End   int
}

// Scan is the result of locating generated blocks in a profile.
type Scan struct {
	// Blocks holds the well-formed blocks in file order.
	Blocks []Span
	// Dangling holds start-marker lines with no matching end marker.
	Dangling []int
}

// Ambiguous reports whether the profile is in a state a single install
// cannot fully repair.
func (s Scan) Ambiguous() bool {
	return len(s.Blocks) > 1 || len(s.Dangling) > 0
}

// splitLines splits content into lines that keep their terminators, so that
// strings.Join(lines, "") == content.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func isLine(line, marker string) bool {
	return strings.TrimRight(line, "\r\n") == marker
}

// FindBlocks locates generated blocks. A block starts at a line equal to the
// start marker and ends at the first following line equal to the end marker.
// A start marker followed by another start marker before any end marker is
// dangling, and so is one that reaches end of file.
func FindBlocks(lines []string) Scan {
	var scan Scan
	open := -1
	for i, line := range lines {
		switch {
		case isLine(line, shell.StartMarker):
			if open >= 0 {
				scan.Dangling = append(scan.Dangling, open)
			}
			open = i
		case open >= 0 && isLine(line, shell.EndMarker):
			scan.Blocks = append(scan.Blocks, Span{Start: open, End: i})
			open = -1
		}
	}
	if open >= 0 {
		scan.Dangling = append(scan.Dangling, open)
	}
	return scan
}

// BlockTexts returns the text of each well-formed block in content, with line
// terminators normalized to "\n" and no trailing newline.
func BlockTexts(content string) []string {
	lines := splitLines(content)
	scan := FindBlocks(lines)
	texts := make([]string, 0, len(scan.Blocks))
	for _, span := range scan.Blocks {
		var b strings.Builder
		for i := span.Start; i <= span.End; i++ {
			if i > span.Start {
				b.WriteByte('\n')
			}
			b.WriteString(strings.TrimRight(lines[i], "\r\n"))
		}
		texts = append(texts, b.String())
	}
	return texts
}
