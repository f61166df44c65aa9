package editor

import "testing"

// Tests are written scenario-first using a small fixture DSL:
//   run(t, "buffer", caretPos, func(f *fixture) {
//     f.ed.InsertText("x")
//     f.expectBuffer("...")
//   })
// This keeps scenario tests concise while exercising only headless
// logic.

// Helper: build editor with buffer and caret.
func newEd(buf string, caret int) *Editor {
	ed := NewEditor(buf)
	ed.Caret = caret
	return ed
}

func TestFindInDir_Forward_NoWrap(t *testing.T) {
	hay := []rune("abc abc abc")
	needle := []rune("abc")

	// Start at 1 -> first match at 4
	pos, ok := FindInDir(hay, needle, 1, DirFwd, false)
	if !ok || pos != 4 {
		t.Fatalf("expected ok=true pos=4, got ok=%v pos=%d", ok, pos)
	}
}

func TestFindInDir_Forward_Wrap(t *testing.T) {
	hay := []rune("abc abc abc")
	needle := []rune("abc")

	// Start after last match; with wrap should return first match at 0
	pos, ok := FindInDir(hay, needle, len(hay), DirFwd, true)
	if !ok || pos != 0 {
		t.Fatalf("expected ok=true pos=0, got ok=%v pos=%d", ok, pos)
	}
}

func TestFindInDir_Backward_NoWrap(t *testing.T) {
	hay := []rune("abc abc abc")
	needle := []rune("abc")

	// Starting at 5, going back should find match at 4
	pos, ok := FindInDir(hay, needle, 5, DirBack, false)
	if !ok || pos != 4 {
		t.Fatalf("expected ok=true pos=4, got ok=%v pos=%d", ok, pos)
	}
}

func TestFindInDir_Backward_Wrap(t *testing.T) {
	hay := []rune("abc abc abc")
	needle := []rune("abc")

	// Start at 0 going back: without wrap would miss; with wrap should find last match at 8
	pos, ok := FindInDir(hay, needle, 0, DirBack, true)
	if !ok || pos != 8 {
		t.Fatalf("expected ok=true pos=8, got ok=%v pos=%d", ok, pos)
	}
}

func TestSelection_Normalised(t *testing.T) {
	s := Sel{Active: true, A: 10, B: 3}
	a, b := s.Normalised()
	if a != 3 || b != 10 {
		t.Fatalf("expected (3,10), got (%d,%d)", a, b)
	}
}

func TestInsert_ReplacesSelection(t *testing.T) {
	run(t, "hello world", 11, func(f *fixture) {
		f.selectRange(6, 11) // "world"
		f.ed.InsertText("cat")

		f.expectBuffer("hello cat")
		f.expectSelection(false, 0, 0)
		f.expectCaret(9) // "hello " (6) + "cat" (3)
	})
}

func TestBackspace_DeletesBeforeCaret(t *testing.T) {
	run(t, "abc", 2, func(f *fixture) {
		f.ed.BackspaceOrDeleteSelection(true)
		f.expectBuffer("ac")
		f.expectCaret(1)
	})
}

func TestDeleteForward_AtEndIsNoop(t *testing.T) {
	run(t, "abc", 3, func(f *fixture) {
		f.ed.BackspaceOrDeleteSelection(false)
		f.expectBuffer("abc")
		f.expectCaret(3)
	})
}

func TestKillToLineEnd(t *testing.T) {
	run(t, "one two\nthree", 4, func(f *fixture) {
		f.ed.KillToLineEnd(SplitLines(f.ed.Runes()))
		f.expectBuffer("one \nthree")
		f.expectCaret(4)

		// At line end the newline itself goes.
		f.ed.KillToLineEnd(SplitLines(f.ed.Runes()))
		f.expectBuffer("one three")
	})
}

func TestDeleteLineAtCaret(t *testing.T) {
	run(t, "aa\nbb\ncc", 4, func(f *fixture) {
		if !f.ed.DeleteLineAtCaret(SplitLines(f.ed.Runes())) {
			f.t.Fatalf("expected line delete to report change")
		}
		f.expectBuffer("aa\ncc")
		f.expectCaret(3)
	})
}

func TestMoveCaretLine_KeepsColumnWherePossible(t *testing.T) {
	run(t, "abcdef\nxy\nlonger", 4, func(f *fixture) {
		lines := SplitLines(f.ed.Runes())
		f.ed.MoveCaretLine(lines, 1, false)
		f.expectCaret(9) // "xy" clamps col 4 to 2

		f.ed.MoveCaretLine(lines, 1, false)
		f.expectCaret(12) // col 2 of "longer"
	})
}

func TestCaretToLineEdge(t *testing.T) {
	run(t, "one two\nthree", 5, func(f *fixture) {
		lines := SplitLines(f.ed.Runes())
		f.ed.CaretToLineEdge(lines, false, false)
		f.expectCaret(0)
		f.ed.CaretToLineEdge(lines, true, false)
		f.expectCaret(7)
	})
}

func TestMoveCaret_ShiftExtendsSelection(t *testing.T) {
	run(t, "abcdef", 2, func(f *fixture) {
		f.ed.MoveCaret(3, true)
		f.expectSelection(true, 2, 5)
		f.expectCaret(5)

		// Moving without extension drops the selection.
		f.ed.MoveCaret(1, false)
		f.expectSelection(false, 0, 0)
	})
}

func TestUndo_RestoresTextAndCaret(t *testing.T) {
	run(t, "hello", 5, func(f *fixture) {
		f.ed.InsertText(" world")
		f.expectBuffer("hello world")

		if !f.ed.Undo() {
			f.t.Fatalf("expected undo to apply")
		}
		f.expectBuffer("hello")
		f.expectCaret(5)

		if f.ed.Undo() {
			f.t.Fatalf("nothing left to undo")
		}
	})
}

func TestClipboard_CopyCutPaste(t *testing.T) {
	clip := &fakeClipboard{}
	run(t, "hello world", 0, func(f *fixture) {
		f.ed.SetClipboard(clip)
		f.selectRange(0, 5)
		f.ed.CutSelection()
		f.expectBuffer(" world")
		if clip.text != "hello" {
			f.t.Fatalf("clipboard: want %q, got %q", "hello", clip.text)
		}

		f.ed.Caret = 6
		f.ed.PasteClipboard()
		f.expectBuffer(" worldhello")
	})
}

// ========
// Helpers
// ========

type fixture struct {
	t  *testing.T
	ed *Editor
}

type fakeClipboard struct {
	text string
}

func (c *fakeClipboard) GetText() (string, error) { return c.text, nil }
func (c *fakeClipboard) SetText(s string) error   { c.text = s; return nil }

// Fixture helpers keep tests declarative: mutate via the editor, then
// assert via `expectCaret`, `expectBuffer`, etc.
func run(t *testing.T, buf string, caret int, fn func(f *fixture)) {
	t.Helper()
	fn(&fixture{t: t, ed: newEd(buf, caret)})
}

func (f *fixture) selectRange(a, b int) {
	f.ed.Sel.Active = true
	f.ed.Sel.A = a
	f.ed.Sel.B = b
}

func (f *fixture) expectCaret(want int) {
	f.t.Helper()
	if f.ed.Caret != want {
		f.t.Fatalf("caret: want %d, got %d", want, f.ed.Caret)
	}
}

func (f *fixture) expectBuffer(want string) {
	f.t.Helper()
	if got := f.ed.String(); got != want {
		f.t.Fatalf("buffer: want %q, got %q", want, got)
	}
}

func (f *fixture) expectSelection(active bool, a, b int) {
	f.t.Helper()
	if f.ed.Sel.Active != active {
		f.t.Fatalf("selection active: want %v, got %v", active, f.ed.Sel.Active)
	}
	if !active {
		return
	}
	gotA, gotB := f.ed.Sel.Normalised()
	if gotA != a || gotB != b {
		f.t.Fatalf("selection range: want (%d,%d), got (%d,%d)", a, b, gotA, gotB)
	}
}
