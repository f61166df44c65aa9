package editor

// Core editing logic. This package is UI-agnostic to keep logic testable.

type Dir int

const (
	DirBack Dir = -1
	DirFwd  Dir = 1
)

type Sel struct {
	Active bool
	A      int // inclusive
	B      int // exclusive-ish in rendering; we normalise anyway
}

func (s Sel) Normalised() (int, int) {
	if !s.Active {
		return 0, 0
	}
	if s.A <= s.B {
		return s.A, s.B
	}
	return s.B, s.A
}

// Clipboard abstracts clipboard operations for testability.
type Clipboard interface {
	GetText() (string, error)
	SetText(string) error
}

const maxUndo = 200

type undoRecord struct {
	text  []rune
	caret int
}

type Editor struct {
	buf   gapBuffer
	Caret int
	Sel   Sel

	clip Clipboard
	undo []undoRecord
}

func NewEditor(initial string) *Editor {
	return &Editor{buf: newGapBuffer([]rune(initial))}
}

func (e *Editor) SetClipboard(c Clipboard) {
	e.clip = c
}

// ======================
// Document access
// ======================

func (e *Editor) Runes() []rune {
	return e.buf.Runes()
}

func (e *Editor) String() string {
	return string(e.buf.Runes())
}

func (e *Editor) RuneLen() int {
	return e.buf.Len()
}

func (e *Editor) RuneAt(i int) (rune, bool) {
	return e.buf.RuneAt(i)
}

func (e *Editor) Slice(a, b int) []rune {
	return e.buf.Slice(a, b)
}

// SetRunes replaces the whole document, clamping the caret and dropping
// any selection. The previous content stays reachable via Undo.
func (e *Editor) SetRunes(rs []rune) {
	e.pushUndo()
	e.buf.Set(rs)
	e.Caret = clamp(e.Caret, 0, e.buf.Len())
	e.Sel.Active = false
}

// ======================
// Editing + selection
// ======================

func (e *Editor) InsertText(text string) {
	rs := []rune(text)
	if !e.Sel.Active && len(rs) == 0 {
		return
	}
	e.pushUndo()
	if e.Sel.Active {
		e.deleteSelection()
	}
	if len(rs) == 0 {
		return
	}
	e.Caret = clamp(e.Caret, 0, e.buf.Len())
	e.buf.Insert(e.Caret, rs)
	e.Caret += len(rs)
}

func (e *Editor) BackspaceOrDeleteSelection(isBackspace bool) {
	if e.Sel.Active {
		e.pushUndo()
		e.deleteSelection()
		return
	}
	if e.buf.Len() == 0 {
		return
	}
	if isBackspace {
		if e.Caret <= 0 {
			return
		}
		e.pushUndo()
		e.buf.Delete(e.Caret-1, e.Caret)
		e.Caret--
		return
	}
	// delete forward
	if e.Caret >= e.buf.Len() {
		return
	}
	e.pushUndo()
	e.buf.Delete(e.Caret, e.Caret+1)
}

// KillToLineEnd removes from the caret to the end of its line, or the
// newline itself when the caret already sits at line end.
func (e *Editor) KillToLineEnd(lines []string) {
	ln, col := LineColForPos(lines, e.Caret)
	if ln < 0 || ln >= len(lines) {
		return
	}
	lineLen := len([]rune(lines[ln]))
	end := e.Caret + (lineLen - col)
	if end == e.Caret && e.Caret < e.buf.Len() {
		end = e.Caret + 1 // eat the newline
	}
	if end <= e.Caret {
		return
	}
	e.pushUndo()
	e.buf.Delete(e.Caret, end)
	e.Sel.Active = false
}

// DeleteLineAtCaret removes the caret's whole line including its
// trailing newline. Reports whether anything changed.
func (e *Editor) DeleteLineAtCaret(lines []string) bool {
	ln, col := LineColForPos(lines, e.Caret)
	if ln < 0 || ln >= len(lines) {
		return false
	}
	start := e.Caret - col
	end := start + len([]rune(lines[ln]))
	if end < e.buf.Len() {
		end++ // newline
	} else if start > 0 {
		start-- // last line: eat the preceding newline instead
	}
	if end <= start {
		return false
	}
	e.pushUndo()
	e.buf.Delete(start, end)
	e.Caret = clamp(start, 0, e.buf.Len())
	e.Sel.Active = false
	return true
}

func (e *Editor) deleteSelection() {
	a, b := e.Sel.Normalised()
	a = clamp(a, 0, e.buf.Len())
	b = clamp(b, 0, e.buf.Len())
	e.Sel.Active = false
	if a == b {
		return
	}
	e.buf.Delete(a, b)
	e.Caret = a
}

// ======================
// Caret movement
// ======================

func (e *Editor) MoveCaret(delta int, extendSelection bool) {
	e.moveTo(clamp(e.Caret+delta, 0, e.buf.Len()), extendSelection)
}

// MoveCaretLine moves the caret delta lines up or down, keeping the
// column where the target line allows.
func (e *Editor) MoveCaretLine(lines []string, delta int, extendSelection bool) {
	ln, col := LineColForPos(lines, e.Caret)
	target := clamp(ln+delta, 0, len(lines)-1)
	if target == ln {
		return
	}
	tlen := len([]rune(lines[target]))
	e.moveTo(PosForLineCol(lines, target, min(col, tlen)), extendSelection)
}

func (e *Editor) MoveCaretPage(lines []string, page int, dir Dir, extendSelection bool) {
	e.MoveCaretLine(lines, int(dir)*page, extendSelection)
}

// CaretToLineEdge moves to the start (end=false) or end (end=true) of
// the caret's line.
func (e *Editor) CaretToLineEdge(lines []string, end, extendSelection bool) {
	ln, col := LineColForPos(lines, e.Caret)
	if ln < 0 || ln >= len(lines) {
		return
	}
	pos := e.Caret - col
	if end {
		pos += len([]rune(lines[ln]))
	}
	e.moveTo(pos, extendSelection)
}

func (e *Editor) CaretToBufferEdge(end, extendSelection bool) {
	pos := 0
	if end {
		pos = e.buf.Len()
	}
	e.moveTo(pos, extendSelection)
}

func (e *Editor) moveTo(newPos int, extendSelection bool) {
	newPos = clamp(newPos, 0, e.buf.Len())
	if extendSelection {
		if !e.Sel.Active {
			e.Sel.Active = true
			e.Sel.A = e.Caret
		}
		e.Sel.B = newPos
	} else {
		e.Sel.Active = false
	}
	e.Caret = newPos
}

// ======================
// Clipboard
// ======================

func (e *Editor) CopySelection() {
	if !e.Sel.Active || e.clip == nil {
		return
	}
	a, b := e.Sel.Normalised()
	a = clamp(a, 0, e.buf.Len())
	b = clamp(b, 0, e.buf.Len())
	if a == b {
		return
	}
	_ = e.clip.SetText(string(e.buf.Slice(a, b)))
}

func (e *Editor) CutSelection() {
	if !e.Sel.Active || e.clip == nil {
		return
	}
	e.CopySelection()
	e.pushUndo()
	e.deleteSelection()
}

func (e *Editor) PasteClipboard() {
	if e.clip == nil {
		return
	}
	txt, err := e.clip.GetText()
	if err != nil || txt == "" {
		return
	}
	e.InsertText(txt)
}

// ======================
// Undo
// ======================

func (e *Editor) pushUndo() {
	rec := undoRecord{text: e.buf.Runes(), caret: e.Caret}
	e.undo = append(e.undo, rec)
	if len(e.undo) > maxUndo {
		e.undo = e.undo[len(e.undo)-maxUndo:]
	}
}

// Undo restores the document and caret as they were before the most
// recent mutation. Reports whether there was anything to undo.
func (e *Editor) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	rec := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.buf.Set(rec.text)
	e.Caret = clamp(rec.caret, 0, e.buf.Len())
	e.Sel.Active = false
	return true
}

// ======================
// Search
// ======================

func FindInDir(hay []rune, needle []rune, start int, dir Dir, wrap bool) (int, bool) {
	if len(needle) == 0 {
		return start, true
	}
	if len(hay) == 0 || len(needle) > len(hay) {
		return -1, false
	}
	start = clamp(start, 0, len(hay))

	if dir == DirFwd {
		if pos, ok := scanFwd(hay, needle, start); ok {
			return pos, true
		}
		if wrap {
			return scanFwd(hay, needle, 0)
		}
		return -1, false
	}

	// backward
	searchStart := start - 1 // search strictly before start to get the previous match
	if pos, ok := scanBack(hay, needle, searchStart); ok {
		return pos, true
	}
	if wrap {
		return scanBack(hay, needle, len(hay))
	}
	return -1, false
}

func scanFwd(hay, needle []rune, start int) (int, bool) {
	for i := start; i+len(needle) <= len(hay); i++ {
		if matchAt(hay, needle, i) {
			return i, true
		}
	}
	return -1, false
}

func scanBack(hay, needle []rune, start int) (int, bool) {
	if start < 0 {
		return -1, false
	}
	lastStart := min(start, len(hay)-len(needle))
	for i := lastStart; i >= 0; i-- {
		if matchAt(hay, needle, i) {
			return i, true
		}
	}
	return -1, false
}

func matchAt(hay, needle []rune, i int) bool {
	for j := 0; j < len(needle); j++ {
		if hay[i+j] != needle[j] {
			return false
		}
	}
	return true
}

// ======================
// Util
// ======================

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
