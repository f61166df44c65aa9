package editor

import "fmt"

// Line/column mapping and caret reporting. A "block" is one line of the
// document; all offsets here are rune offsets.

func SplitLines(buf []rune) []string {
	lines := make([]string, 0, 64)
	var cur []rune
	for _, r := range buf {
		if r == '\n' {
			lines = append(lines, string(cur))
			cur = cur[:0]
			continue
		}
		cur = append(cur, r)
	}
	lines = append(lines, string(cur))
	return lines
}

// Convert a buffer position to (line, col) assuming lines from SplitLines.
func LineColForPos(lines []string, pos int) (int, int) {
	if pos <= 0 {
		return 0, 0
	}
	p := 0
	for i, line := range lines {
		l := len([]rune(line))
		if pos <= p+l {
			return i, pos - p
		}
		p += l + 1
	}
	// end
	if len(lines) == 0 {
		return 0, 0
	}
	last := len(lines) - 1
	return last, len([]rune(lines[last]))
}

// PosForLineCol is the inverse mapping: buffer position of (line, col).
// col past the line end clamps to the line end.
func PosForLineCol(lines []string, line, col int) int {
	if line < 0 {
		return 0
	}
	p := 0
	for i, ln := range lines {
		l := len([]rune(ln))
		if i == line {
			if col > l {
				col = l
			}
			if col < 0 {
				col = 0
			}
			return p + col
		}
		p += l + 1
	}
	return max(p-1, 0)
}

func CaretLineAt(lines []string, caret int) int {
	ln, _ := LineColForPos(lines, caret)
	return ln
}

func CaretColAt(lines []string, caret int) int {
	_, col := LineColForPos(lines, caret)
	return col
}

// Position is a caret location: the block (line) index and the rune
// offset within that block. Offset == block length means the caret sits
// after the last character.
type Position struct {
	Block  int
	Offset int
}

// PositionAt derives a Position from a flat buffer offset.
func PositionAt(lines []string, caret int) Position {
	ln, col := LineColForPos(lines, caret)
	return Position{Block: ln, Offset: col}
}

// Label formats a position for the status bar, 1-based in both axes.
// The column counts characters, not expanded tab cells.
func (p Position) Label() string {
	return fmt.Sprintf("Ln %d, Col %d", p.Block+1, p.Offset+1)
}

// LineTracker remembers which single block holds the caret so the view
// can give that line a distinct background. It never influences
// classification.
type LineTracker struct {
	block int
	valid bool
}

// OnCaretMoved records the caret's new position.
func (t *LineTracker) OnCaretMoved(p Position) {
	t.block = p.Block
	t.valid = true
}

// Reset forgets the tracked line (no buffer focused).
func (t *LineTracker) Reset() {
	t.valid = false
}

// CurrentBlock reports the tracked block index, if any.
func (t *LineTracker) CurrentBlock() (int, bool) {
	if !t.valid {
		return 0, false
	}
	return t.block, true
}
