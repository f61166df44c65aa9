package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"lc/editor"
)

type modMask uint16

const (
	modShift modMask = 1 << iota
	modCtrl
	modLAlt
	modRAlt
)

type keyCode int

const (
	keyUnknown keyCode = iota
	keyUp
	keyDown
	keyPageUp
	keyPageDown
	keyHome
	keyEnd
	keyEscape
	keyTab
	keyBackspace
	keyDelete
	keyReturn
	keyKpEnter
	keyLeft
	keyRight
	keySpace
	keyPeriod
	keyComma
	keySlash
	keyA
	keyB
	keyC
	keyE
	keyF
	keyK
	keyL
	keyO
	keyQ
	keyR
	keyS
	keyU
	keyV
	keyW
	keyX
)

type keyEvent struct {
	down   bool
	repeat int
	key    keyCode
	mods   modMask
}

func handleKeyEvent(app *appState, e keyEvent) bool {
	ed := app.ed
	if ed == nil {
		return true
	}
	if e.down {
		app.lastEvent = ""
	}

	// Esc-prefix commands: the key after a bare Escape is a command, not
	// text. Esc+Esc closes the current buffer.
	if app.cmdPrefixActive && e.down {
		app.cmdPrefixActive = false
		return handlePrefixedKey(app, e)
	}

	if e.down && e.repeat == 0 && e.key == keyEscape {
		if ed.Sel.Active {
			ed.Sel.Active = false
			return true
		}
		app.cmdPrefixActive = true
		app.lastEvent = "Esc: L=language R=reload Shift+S=save all Shift+Q=quit Esc=close buffer"
		return true
	}

	if e.down && e.repeat == 0 {
		ctrlHeld := (e.mods & modCtrl) != 0
		if ctrlHeld {
			switch e.key {
			case keyTab:
				delta := 1
				if (e.mods & modShift) != 0 {
					delta = -1
				}
				app.switchBuffer(delta)
				app.lastEvent = fmt.Sprintf("Switched to buffer %d/%d", app.bufIdx+1, len(app.buffers))
				return true
			case keyQ:
				if (e.mods & modShift) != 0 {
					app.lastEvent = "Quit (discard all buffers)"
					return false
				}
				remaining := app.closeBuffer()
				if remaining == 0 {
					return false
				}
				app.lastEvent = fmt.Sprintf("Closed buffer, now %d/%d", app.bufIdx+1, remaining)
				return true
			case keyB:
				app.addBuffer()
				app.lastEvent = fmt.Sprintf("New buffer %d/%d", app.bufIdx+1, len(app.buffers))
				return true
			case keyW, keyS:
				if e.key == keyS && (e.mods&modShift) != 0 {
					if err := saveAll(app); err != nil {
						app.lastEvent = fmt.Sprintf("SAVE ALL ERR: %v", err)
					} else {
						app.lastEvent = "Saved dirty buffers"
					}
					return true
				}
				if err := saveCurrent(app); err != nil {
					app.lastEvent = fmt.Sprintf("SAVE ERR: %v", err)
				} else {
					app.lastEvent = fmt.Sprintf("Saved %s", app.currentPath)
				}
				return true
			case keyR:
				if err := buildAndRunCurrent(app); err != nil {
					app.lastEvent = fmt.Sprintf("RUN ERR: %v", err)
				} else {
					app.lastEvent = app.tr("run")
				}
				return true
			case keyO:
				app.inputActive = true
				app.inputPrompt = app.tr("open_file") + ": "
				app.inputValue = ""
				app.inputKind = "open"
				return true
			case keyF:
				app.inputActive = true
				app.inputPrompt = "Search: "
				app.inputValue = ""
				app.inputKind = "search"
				return true
			case keyA:
				if (e.mods & modShift) != 0 {
					ed.CaretToBufferEdge(false, false)
				} else {
					ed.CaretToLineEdge(editor.SplitLines(ed.Runes()), false, false)
				}
				app.onCaretMoved()
				return true
			case keyE:
				if (e.mods & modShift) != 0 {
					ed.CaretToBufferEdge(true, false)
				} else {
					ed.CaretToLineEdge(editor.SplitLines(ed.Runes()), true, false)
				}
				app.onCaretMoved()
				return true
			case keyK:
				if slotEditable(app) {
					ed.KillToLineEnd(editor.SplitLines(ed.Runes()))
					app.markDirty()
				}
				return true
			case keyU:
				if slotEditable(app) && ed.Undo() {
					app.lastEvent = "Undo"
					app.markDirty()
				}
				return true
			case keySlash:
				if (e.mods & modShift) != 0 {
					app.addBuffer()
					app.ed.SetRunes([]rune(helpText()))
					slot := app.activeSlot()
					slot.readonly = true
					slot.dirty = false
					app.currentPath = ""
					app.lastEvent = "Opened shortcuts buffer"
					return true
				}
				if slotEditable(app) {
					toggleComment(ed)
					app.lastEvent = "Toggled comment"
					app.markDirty()
				}
				return true
			case keyComma:
				ed.MoveCaretPage(editor.SplitLines(ed.Runes()), 20, editor.DirBack, (e.mods&modShift) != 0)
				app.onCaretMoved()
				return true
			case keyPeriod:
				ed.MoveCaretPage(editor.SplitLines(ed.Runes()), 20, editor.DirFwd, (e.mods&modShift) != 0)
				app.onCaretMoved()
				return true
			case keyC:
				ed.CopySelection()
				return true
			case keyX:
				if slotEditable(app) {
					ed.CutSelection()
					app.markDirty()
				}
				return true
			case keyV:
				if slotEditable(app) {
					ed.PasteClipboard()
					app.markDirty()
				}
				return true
			}
		}
	}

	if e.down {
		lines := editor.SplitLines(ed.Runes())
		switch e.key {
		case keyBackspace:
			if slotEditable(app) {
				ed.BackspaceOrDeleteSelection(true)
				app.markDirty()
			}
		case keyDelete:
			if !slotEditable(app) {
				return true
			}
			if (e.mods & modShift) != 0 {
				if ed.DeleteLineAtCaret(lines) {
					app.markDirty()
				}
			} else {
				ed.BackspaceOrDeleteSelection(false)
				app.markDirty()
			}
		case keyLeft:
			ed.MoveCaret(-1, (e.mods&modShift) != 0)
			app.onCaretMoved()
		case keyRight:
			ed.MoveCaret(1, (e.mods&modShift) != 0)
			app.onCaretMoved()
		case keyUp:
			ed.MoveCaretLine(lines, -1, (e.mods&modShift) != 0)
			app.onCaretMoved()
		case keyDown:
			ed.MoveCaretLine(lines, 1, (e.mods&modShift) != 0)
			app.onCaretMoved()
		case keyPageDown:
			ed.MoveCaretPage(lines, 20, editor.DirFwd, (e.mods&modShift) != 0)
			app.onCaretMoved()
		case keyPageUp:
			ed.MoveCaretPage(lines, 20, editor.DirBack, (e.mods&modShift) != 0)
			app.onCaretMoved()
		case keyHome:
			ed.CaretToLineEdge(lines, false, (e.mods&modShift) != 0)
			app.onCaretMoved()
		case keyEnd:
			ed.CaretToLineEdge(lines, true, (e.mods&modShift) != 0)
			app.onCaretMoved()
		case keyReturn, keyKpEnter:
			if e.repeat == 0 && slotEditable(app) {
				ed.InsertText("\n")
				app.markDirty()
			}
		}
	}
	return true
}

// handlePrefixedKey runs the command bound to the key following a bare
// Escape.
func handlePrefixedKey(app *appState, e keyEvent) bool {
	switch e.key {
	case keyEscape:
		slot := app.activeSlot()
		if slot != nil && slot.dirty && !slot.readonly {
			app.lastEvent = "Unsaved changes — Ctrl+W to save or Ctrl+Q to close"
			return true
		}
		remaining := app.closeBuffer()
		app.lastEvent = "Closed buffer"
		return remaining > 0
	case keyL:
		app.lang = app.catalog.Next(app.lang)
		app.lastEvent = fmt.Sprintf("Language: %s (%s)", app.catalog.Name(app.lang), app.lang)
		return true
	case keyR:
		if err := reloadCurrentFromDisk(app); err != nil {
			app.lastEvent = fmt.Sprintf("RELOAD ERR: %v", err)
		} else {
			app.lastEvent = fmt.Sprintf("Reloaded %s", app.currentPath)
		}
		return true
	case keyS:
		if (e.mods & modShift) != 0 {
			if err := saveAll(app); err != nil {
				app.lastEvent = fmt.Sprintf("SAVE ALL ERR: %v", err)
			} else {
				app.lastEvent = "Saved dirty buffers"
			}
		}
		return true
	case keyQ:
		if (e.mods & modShift) != 0 {
			app.lastEvent = "Quit (discard all buffers)"
			return false
		}
		return true
	}
	app.lastEvent = "Esc prefix: unknown key"
	return true
}

func slotEditable(app *appState) bool {
	slot := app.activeSlot()
	return slot != nil && !slot.readonly
}

func handleTextEvent(app *appState, text string, mods modMask) bool {
	if text == "" || !utf8.ValidString(text) {
		return true
	}
	if app.cmdPrefixActive {
		app.cmdPrefixActive = false
		if k, ok := runeToKeyCode([]rune(text)[0]); ok {
			keyMods := mods
			if inferShiftFromRune([]rune(text)[0]) {
				keyMods |= modShift
			}
			return handlePrefixedKey(app, keyEvent{down: true, key: k, mods: keyMods})
		}
		app.lastEvent = "Esc prefix: unknown key"
		return true
	}
	if app.ed == nil || !slotEditable(app) {
		return true
	}
	app.ed.InsertText(text)
	app.markDirty()
	return true
}

func handleInputKey(app *appState, e keyEvent) bool {
	if !e.down || e.repeat != 0 {
		return true
	}
	switch e.key {
	case keyEscape:
		app.clearInput()
		app.lastEvent = "Input cancelled"
		return true
	case keyBackspace:
		if len(app.inputValue) > 0 {
			rs := []rune(app.inputValue)
			app.inputValue = string(rs[:len(rs)-1])
		}
		return true
	case keyReturn, keyKpEnter:
		kind := app.inputKind
		value := app.inputValue
		app.clearInput()
		return commitInput(app, kind, value)
	}
	return true
}

func commitInput(app *appState, kind, value string) bool {
	switch kind {
	case "save":
		name := strings.TrimSpace(value)
		if name == "" {
			app.lastEvent = "SAVE ERR: filename required"
			return true
		}
		path := name
		if !filepath.IsAbs(path) {
			root := app.openRoot
			if root == "" {
				root = "."
			}
			path = filepath.Join(root, name)
		}
		app.currentPath = path
		if slot := app.activeSlot(); slot != nil {
			slot.path = path
		}
		if err := saveCurrent(app); err != nil {
			app.lastEvent = fmt.Sprintf("SAVE ERR: %v", err)
		} else {
			app.lastEvent = fmt.Sprintf("Saved %s", app.currentPath)
		}
	case "open":
		if err := openPathInput(app, value); err != nil {
			app.lastEvent = fmt.Sprintf("OPEN ERR: %v", err)
		} else {
			app.lastEvent = fmt.Sprintf("Opened %s", app.currentPath)
		}
	case "search":
		query := []rune(value)
		if len(query) == 0 {
			query = app.lastSearchQuery
		}
		if len(query) == 0 {
			app.lastEvent = "Search: empty pattern"
			return true
		}
		app.lastSearchQuery = query
		if searchNext(app, query) {
			app.lastEvent = fmt.Sprintf("Found %q", string(query))
		} else {
			app.lastEvent = fmt.Sprintf("Not found: %q", string(query))
		}
	}
	return true
}

func (app *appState) clearInput() {
	app.inputActive = false
	app.inputValue = ""
	app.inputPrompt = ""
	app.inputKind = ""
}

func handleInputText(app *appState, text string) bool {
	if text != "" && utf8.ValidString(text) {
		app.inputValue += text
	}
	return true
}
