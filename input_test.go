package main

import (
	"os"
	"path/filepath"
	"testing"
)

func press(app *appState, k keyCode, mods modMask) bool {
	return handleKeyEvent(app, keyEvent{down: true, key: k, mods: mods})
}

func typeText(app *appState, s string) {
	for _, r := range s {
		handleTextEvent(app, string(r), 0)
	}
}

func TestTypingInsertsAndDirties(t *testing.T) {
	app := newTestApp("")
	typeText(app, "int x;")
	if got := app.ed.String(); got != "int x;" {
		t.Fatalf("buffer: want %q, got %q", "int x;", got)
	}
	if !app.activeSlot().dirty {
		t.Fatalf("typing should dirty the buffer")
	}
}

func TestCtrlBAddsBuffer(t *testing.T) {
	app := newTestApp("one")
	press(app, keyB, modCtrl)
	if len(app.buffers) != 2 || app.bufIdx != 1 {
		t.Fatalf("want new active buffer, got %d/%d", len(app.buffers), app.bufIdx)
	}
}

func TestCtrlTabCyclesBuffers(t *testing.T) {
	app := newTestApp("one")
	app.addBuffer()
	press(app, keyTab, modCtrl)
	if app.bufIdx != 0 {
		t.Fatalf("forward cycle: want 0, got %d", app.bufIdx)
	}
	press(app, keyTab, modCtrl|modShift)
	if app.bufIdx != 1 {
		t.Fatalf("reverse cycle: want 1, got %d", app.bufIdx)
	}
}

func TestCtrlQClosesThenQuits(t *testing.T) {
	app := newTestApp("one")
	app.addBuffer()
	if !press(app, keyQ, modCtrl) {
		t.Fatalf("closing one of two buffers should not quit")
	}
	if press(app, keyQ, modCtrl) {
		t.Fatalf("closing the last buffer should quit")
	}
}

func TestCtrlUUndoes(t *testing.T) {
	app := newTestApp("")
	typeText(app, "abc")
	press(app, keyU, modCtrl)
	if got := app.ed.String(); got != "ab" {
		t.Fatalf("after undo: want %q, got %q", "ab", got)
	}
}

func TestCtrlSlashTogglesComment(t *testing.T) {
	app := newTestApp("int x;")
	press(app, keySlash, modCtrl)
	if got := app.ed.String(); got != "//int x;" {
		t.Fatalf("after toggle: got %q", got)
	}
}

func TestCtrlShiftSlashOpensHelp(t *testing.T) {
	app := newTestApp("")
	press(app, keySlash, modCtrl|modShift)
	if len(app.buffers) != 2 {
		t.Fatalf("help should open in a new buffer")
	}
	if !app.activeSlot().readonly {
		t.Fatalf("help buffer should be read-only")
	}
	if app.ed.RuneLen() == 0 {
		t.Fatalf("help buffer should carry the shortcut list")
	}
}

func TestReadonlyBufferRefusesEdits(t *testing.T) {
	app := newTestApp("locked")
	app.activeSlot().readonly = true

	typeText(app, "x")
	press(app, keyBackspace, 0)
	press(app, keyK, modCtrl)
	if got := app.ed.String(); got != "locked" {
		t.Fatalf("read-only buffer changed: %q", got)
	}
	if app.activeSlot().dirty {
		t.Fatalf("read-only buffer must stay clean")
	}
}

func TestEscapeClearsSelectionFirst(t *testing.T) {
	app := newTestApp("hello")
	app.ed.MoveCaret(3, true)

	press(app, keyEscape, 0)
	if app.ed.Sel.Active {
		t.Fatalf("escape should drop the selection")
	}
	if app.cmdPrefixActive {
		t.Fatalf("escape with a selection must not arm the prefix")
	}

	press(app, keyEscape, 0)
	if !app.cmdPrefixActive {
		t.Fatalf("second escape should arm the command prefix")
	}
}

func TestEscPrefixLanguageCycle(t *testing.T) {
	app := newTestApp("")
	press(app, keyEscape, 0)
	handleTextEvent(app, "l", 0)
	if app.cmdPrefixActive {
		t.Fatalf("prefix should be consumed")
	}
	// The default catalog only ships English, so the cycle is a fixpoint.
	if app.lang != "en" {
		t.Fatalf("lang: want en, got %q", app.lang)
	}
}

func TestEscEscClosesCleanBuffer(t *testing.T) {
	app := newTestApp("clean")
	app.addBuffer()
	press(app, keyEscape, 0)
	if !press(app, keyEscape, 0) {
		t.Fatalf("closing one of two buffers should not quit")
	}
	if len(app.buffers) != 1 {
		t.Fatalf("want 1 buffer left, got %d", len(app.buffers))
	}
}

func TestEscEscKeepsDirtyBuffer(t *testing.T) {
	app := newTestApp("")
	typeText(app, "unsaved")
	press(app, keyEscape, 0)
	press(app, keyEscape, 0)
	if len(app.buffers) != 1 {
		t.Fatalf("dirty buffer must survive Esc+Esc")
	}
}

func TestEscPrefixReloadReportsMissingPath(t *testing.T) {
	app := newTestApp("")
	press(app, keyEscape, 0)
	press(app, keyR, 0)
	if app.lastEvent == "" {
		t.Fatalf("reload without a path should report an error")
	}
}

func TestSearchPromptFlow(t *testing.T) {
	app := newTestApp("alpha beta alpha")
	press(app, keyF, modCtrl)
	if !app.inputActive || app.inputKind != "search" {
		t.Fatalf("Ctrl+F should open the search prompt")
	}

	handleInputText(app, "beta")
	handleInputKey(app, keyEvent{down: true, key: keyReturn})
	if app.inputActive {
		t.Fatalf("enter should close the prompt")
	}
	if app.ed.Caret != 6 {
		t.Fatalf("caret after search: want 6, got %d", app.ed.Caret)
	}

	// Empty pattern repeats the previous query.
	app.ed.Caret = 0
	press(app, keyF, modCtrl)
	handleInputKey(app, keyEvent{down: true, key: keyReturn})
	if app.ed.Caret != 6 {
		t.Fatalf("repeat search: want 6, got %d", app.ed.Caret)
	}
}

func TestOpenPromptFlow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "z.c")
	if err := os.WriteFile(path, []byte("int z;\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	app := newTestApp("")
	app.openRoot = dir
	press(app, keyO, modCtrl)
	if !app.inputActive || app.inputKind != "open" {
		t.Fatalf("Ctrl+O should open the path prompt")
	}
	handleInputText(app, "z.c")
	handleInputKey(app, keyEvent{down: true, key: keyReturn})
	if app.currentPath != path {
		t.Fatalf("open prompt: want %q, got %q", path, app.currentPath)
	}
	if got := app.ed.String(); got != "int z;\n" {
		t.Fatalf("opened content: got %q", got)
	}
}

func TestInputEscapeCancels(t *testing.T) {
	app := newTestApp("")
	press(app, keyF, modCtrl)
	handleInputText(app, "abc")
	handleInputKey(app, keyEvent{down: true, key: keyEscape})
	if app.inputActive || app.inputValue != "" {
		t.Fatalf("escape should reset the prompt")
	}
}

func TestInputBackspaceTrimsRune(t *testing.T) {
	app := newTestApp("")
	press(app, keyF, modCtrl)
	handleInputText(app, "héllo")
	handleInputKey(app, keyEvent{down: true, key: keyBackspace})
	if app.inputValue != "héll" {
		t.Fatalf("backspace: want %q, got %q", "héll", app.inputValue)
	}
}

func TestMovementKeysTrackCaretLine(t *testing.T) {
	app := newTestApp("a\nb\nc")
	press(app, keyDown, 0)
	press(app, keyDown, 0)
	blk, ok := app.lineTracker.CurrentBlock()
	if !ok || blk != 2 {
		t.Fatalf("tracker after two downs: want (2,true), got (%d,%v)", blk, ok)
	}
	press(app, keyUp, 0)
	blk, _ = app.lineTracker.CurrentBlock()
	if blk != 1 {
		t.Fatalf("tracker after up: want 1, got %d", blk)
	}
}
