package diff

import (
	"fmt"
	"strconv"
	"strings"
)

// contextLines is the number of unchanged lines shown around each change
// in unified output.
const contextLines = 3

// SplitLines splits file content into lines for diffing. A trailing
// newline does not produce a final empty line.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

// Unified renders the edit script between a and b as unified-style hunks
// with three lines of context. Identical inputs produce an empty string.
func Unified(aName, bName string, a, b []string) string {
	ops := EditScript(a, b)

	// Positions of each op in both sequences; aPos[i] is the number of a
	// lines consumed before ops[i].
	aPos := make([]int, len(ops)+1)
	bPos := make([]int, len(ops)+1)
	ai, bi := 0, 0
	for i, op := range ops {
		aPos[i], bPos[i] = ai, bi
		switch op.Op {
		case Equal:
			ai++
			bi++
		case Delete:
			ai++
		case Insert:
			bi++
		}
	}
	aPos[len(ops)], bPos[len(ops)] = ai, bi

	var sb strings.Builder
	wroteHeader := false

	i := 0
	for i < len(ops) {
		if ops[i].Op == Equal {
			i++
			continue
		}

		// Extend the hunk across changes separated by at most 2*context
		// equal lines.
		end := i
		run := 0
		for j := i + 1; j < len(ops); j++ {
			if ops[j].Op == Equal {
				run++
				if run > 2*contextLines {
					break
				}
			} else {
				end = j
				run = 0
			}
		}

		start := i - contextLines
		if start < 0 {
			start = 0
		}
		stop := end + contextLines
		if stop > len(ops)-1 {
			stop = len(ops) - 1
		}

		if !wroteHeader {
			fmt.Fprintf(&sb, "--- %s\n+++ %s\n", aName, bName)
			wroteHeader = true
		}

		aStart, bStart := aPos[start], bPos[start]
		fmt.Fprintf(&sb, "@@ -%s +%s @@\n",
			hunkRange(aStart, aPos[stop+1]-aStart),
			hunkRange(bStart, bPos[stop+1]-bStart),
		)
		for j := start; j <= stop; j++ {
			switch ops[j].Op {
			case Equal:
				sb.WriteByte(' ')
			case Delete:
				sb.WriteByte('-')
			case Insert:
				sb.WriteByte('+')
			}
			sb.WriteString(ops[j].Text)
			sb.WriteByte('\n')
		}

		i = stop + 1
	}

	return sb.String()
}

// hunkRange renders a unified range: 1-based start, with zero-length
// ranges anchored before the start line.
func hunkRange(start, count int) string {
	if count == 1 {
		return strconv.Itoa(start + 1)
	}
	if count == 0 {
		return fmt.Sprintf("%d,0", start)
	}
	return fmt.Sprintf("%d,%d", start+1, count)
}
