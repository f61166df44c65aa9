package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"lc/config"
	"lc/editor"
	"lc/highlight"
	"lc/translate"
)

type bufferSlot struct {
	ed   *editor.Editor
	hl   *highlight.Cache
	path string
	// readonly marks output buffers (build results) that refuse edits.
	readonly      bool
	dirty         bool
	changedOnDisk bool
	rev           int
	textRev       int
}

type renderCache struct {
	bufIdx     int
	textRev    int
	path       string
	lines      []string
	lineStarts []int
}

type appState struct {
	ed          *editor.Editor
	cfg         config.Config
	catalog     *translate.Catalog
	lang        string
	lastEvent   string
	inputActive bool
	inputPrompt string
	inputValue  string
	inputKind   string
	openRoot    string
	buffers     []bufferSlot
	bufIdx      int
	currentPath string
	scrollLine  int
	lineTracker editor.LineTracker
	syntaxCheck *cSyntaxChecker
	watcher     *diskWatcher
	clipboard   editor.Clipboard
	rules       *highlight.RuleSet
	// Esc-prefix command state.
	cmdPrefixActive bool
	lastSearchQuery []rune
	render          renderCache
}

type helpEntry struct {
	action string
	keys   string
}

var helpEntries = []helpEntry{
	{"New buffer / cycle buffers", "Ctrl+B / Ctrl+Tab (Shift = reverse)"},
	{"Open file", "Ctrl+O, type path, Enter"},
	{"Save current / save as / save all", "Ctrl+W / Ctrl+W on untitled / Esc+Shift+S"},
	{"Build & run (gcc)", "Ctrl+R"},
	{"Close buffer / quit all", "Ctrl+Q / Esc+Shift+Q"},
	{"Undo", "Ctrl+U"},
	{"Comment / uncomment", "Ctrl+/ (selection or current line)"},
	{"Line start / end", "Ctrl+A / Ctrl+E"},
	{"Buffer start / end", "Ctrl+Shift+A / Ctrl+Shift+E"},
	{"Kill to EOL", "Ctrl+K"},
	{"Copy / Cut / Paste", "Ctrl+C / Ctrl+X / Ctrl+V"},
	{"Search", "Ctrl+F, pattern, Enter; empty pattern repeats last"},
	{"Cycle UI language", "Esc+L"},
	{"Reload file from disk", "Esc+R"},
	{"Navigation", "Arrows, PageUp/Down, Ctrl+, Ctrl+. (Shift = select)"},
	{"Escape", "Clears selection / cancels prompt; otherwise command prefix (Esc then Esc closes current buffer)"},
	{"Help buffer", "Ctrl+Shift+/ (Ctrl+?)"},
}

func (app *appState) tr(key string) string {
	if app == nil || app.catalog == nil {
		return key
	}
	return app.catalog.T(app.lang, key)
}

func (app *appState) newSlot(ed *editor.Editor) bufferSlot {
	rules := app.rules
	return bufferSlot{
		ed:      ed,
		hl:      highlight.NewCache(func(text string) []highlight.Span { return highlight.Classify(text, rules) }),
		rev:     1,
		textRev: 1,
	}
}

func (app *appState) initBuffers(ed *editor.Editor) {
	app.buffers = []bufferSlot{app.newSlot(ed)}
	app.bufIdx = 0
	app.ed = ed
	app.currentPath = ""
	app.render = renderCache{}
	app.lineTracker.Reset()
}

func (app *appState) syncActiveBuffer() {
	if app == nil {
		return
	}
	if len(app.buffers) == 0 {
		app.ed = nil
		app.currentPath = ""
		app.lineTracker.Reset()
		return
	}
	app.bufIdx = clamp(app.bufIdx, 0, len(app.buffers)-1)
	b := app.buffers[app.bufIdx]
	app.ed = b.ed
	app.currentPath = b.path
}

func (app *appState) addBuffer() {
	nb := app.newSlot(editor.NewEditor(""))
	if app.clipboard != nil {
		nb.ed.SetClipboard(app.clipboard)
	}
	app.buffers = append(app.buffers, nb)
	app.bufIdx = len(app.buffers) - 1
	app.syncActiveBuffer()
}

func (app *appState) activeSlot() *bufferSlot {
	if app == nil || app.bufIdx < 0 || app.bufIdx >= len(app.buffers) {
		return nil
	}
	return &app.buffers[app.bufIdx]
}

// onTextChanged is the single text-mutation notification: it bumps the
// revision, marks the buffer dirty, and drops cached spans from the
// first block that may have changed.
func (app *appState) onTextChanged(fromBlock int) {
	slot := app.activeSlot()
	if slot == nil {
		return
	}
	slot.rev++
	slot.textRev++
	slot.dirty = true
	slot.hl.InvalidateFrom(max(0, fromBlock))
	app.onCaretMoved()
}

// markDirty flags a mutation at the caret's line. Edits can join lines,
// so the previous line is invalidated too.
func (app *appState) markDirty() {
	if app == nil || app.ed == nil {
		return
	}
	lines := editor.SplitLines(app.ed.Runes())
	app.onTextChanged(editor.CaretLineAt(lines, app.ed.Caret) - 1)
}

// onCaretMoved refreshes the current-line tracker. It never touches the
// highlight cache.
func (app *appState) onCaretMoved() {
	if app == nil {
		return
	}
	if app.ed == nil {
		app.lineTracker.Reset()
		return
	}
	lines := editor.SplitLines(app.ed.Runes())
	app.lineTracker.OnCaretMoved(editor.PositionAt(lines, app.ed.Caret))
}

// onScrolled clamps the new first visible line. Scrolling alone
// invalidates nothing: spans and the tracked caret line are unaffected.
func (app *appState) onScrolled(first, totalLines, visibleLines int) {
	if app == nil {
		return
	}
	if visibleLines <= 0 {
		visibleLines = 1
	}
	app.scrollLine = clamp(first, 0, max(0, totalLines-visibleLines))
}

func (app *appState) switchBuffer(delta int) {
	if len(app.buffers) == 0 {
		return
	}
	n := len(app.buffers)
	app.bufIdx = (app.bufIdx + delta + n) % n
	app.syncActiveBuffer()
	app.onCaretMoved()
}

func (app *appState) closeBuffer() int {
	if app == nil || len(app.buffers) == 0 {
		return 0
	}
	if app.watcher != nil && app.currentPath != "" {
		app.watcher.Forget(app.currentPath)
	}
	app.buffers = append(app.buffers[:app.bufIdx], app.buffers[app.bufIdx+1:]...)
	if app.bufIdx >= len(app.buffers) {
		app.bufIdx = len(app.buffers) - 1
	}
	app.syncActiveBuffer()
	return len(app.buffers)
}

func saveCurrent(app *appState) error {
	if app == nil || app.ed == nil || len(app.buffers) == 0 {
		return fmt.Errorf("no editor to save")
	}
	if slot := app.activeSlot(); slot != nil && slot.readonly {
		return fmt.Errorf("buffer is read-only")
	}
	path := app.currentPath
	if path == "" {
		app.inputActive = true
		app.inputPrompt = app.tr("save_file") + ": "
		app.inputValue = ""
		app.inputKind = "save"
		app.lastEvent = "Save: enter filename, Enter to confirm, Esc to cancel"
		return fmt.Errorf("no path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if app.watcher != nil {
		app.watcher.SuppressNext(path)
	}
	if err := os.WriteFile(path, []byte(app.ed.String()), 0644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	slot := app.activeSlot()
	slot.path = path
	slot.dirty = false
	slot.changedOnDisk = false
	slot.rev++
	dlog.logf("app", "saved %s (%d runes)", path, app.ed.RuneLen())
	if app.watcher != nil {
		_ = app.watcher.Watch(path)
	}
	return nil
}

func saveAll(app *appState) error {
	if app == nil || len(app.buffers) == 0 {
		return fmt.Errorf("no buffers to save")
	}
	orig := app.bufIdx
	saved := 0
	for i := range app.buffers {
		app.bufIdx = i
		app.syncActiveBuffer()
		if !app.buffers[i].dirty || app.buffers[i].readonly {
			continue
		}
		if err := saveCurrent(app); err != nil {
			app.bufIdx = orig
			app.syncActiveBuffer()
			return err
		}
		saved++
	}
	app.bufIdx = orig
	app.syncActiveBuffer()
	if saved == 0 {
		return fmt.Errorf("no dirty buffers to save")
	}
	return nil
}

func reloadCurrentFromDisk(app *appState) error {
	if app == nil || app.ed == nil {
		return fmt.Errorf("no active buffer")
	}
	path := app.currentPath
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("no path")
	}
	buf, err := readFileRunes(path)
	if err != nil {
		return err
	}
	app.ed.SetRunes(buf)
	app.ed.Caret = clamp(app.ed.Caret, 0, app.ed.RuneLen())
	app.ed.Sel = editor.Sel{}
	slot := app.activeSlot()
	slot.dirty = false
	slot.changedOnDisk = false
	slot.path = path
	app.onTextChanged(0)
	slot.dirty = false
	dlog.logf("app", "reloaded %s", path)
	return nil
}

func openPath(app *appState, path string) error {
	if app == nil || app.ed == nil || len(app.buffers) == 0 {
		return fmt.Errorf("no active buffer")
	}
	buf, err := readFileRunes(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	app.currentPath = path
	slot := app.activeSlot()
	slot.path = path
	slot.dirty = false
	slot.changedOnDisk = false
	app.ed.SetRunes(buf)
	app.ed.Caret = 0
	app.ed.Sel = editor.Sel{}
	app.onTextChanged(0)
	slot.dirty = false
	if app.watcher != nil {
		_ = app.watcher.Watch(path)
	}
	dlog.logf("app", "opened %s (%d runes)", path, len(buf))
	return nil
}

// openPathInput resolves a prompt value relative to the open root and
// opens it in a fresh buffer (or jumps to an existing one).
func openPathInput(app *appState, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("filename required")
	}
	full := name
	if !filepath.IsAbs(full) {
		root := app.openRoot
		if root == "" {
			if cwd, err := os.Getwd(); err == nil {
				root = cwd
			}
		}
		full = filepath.Join(root, name)
	}
	full = filepath.Clean(full)

	for i, b := range app.buffers {
		if b.path != "" && filepath.Clean(b.path) == full {
			app.bufIdx = i
			app.syncActiveBuffer()
			return nil
		}
	}

	if app.ed.RuneLen() > 0 || app.currentPath != "" {
		app.addBuffer()
	}
	app.openRoot = filepath.Dir(full)
	if _, err := os.Stat(full); errors.Is(err, os.ErrNotExist) {
		// New file: empty buffer bound to the path, created on save.
		slot := app.activeSlot()
		slot.path = full
		app.currentPath = full
		app.ed.SetRunes(nil)
		app.onTextChanged(0)
		slot.dirty = false
		return nil
	}
	return openPath(app, full)
}

func readFileRunes(path string) ([]rune, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bytesToRunes(data), nil
}

func bytesToRunes(data []byte) []rune {
	if len(data) == 0 {
		return nil
	}
	// Avoid an extra byte-to-string copy when decoding file content into runes.
	s := unsafe.String(unsafe.SliceData(data), len(data))
	return []rune(s)
}

func loadStartupFiles(app *appState, args []string) {
	if app == nil {
		return
	}
	for i, arg := range args {
		if i > 0 {
			app.addBuffer()
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			app.lastEvent = fmt.Sprintf("OPEN ERR: %v", err)
			continue
		}
		app.openRoot = filepath.Dir(abs)
		if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
			app.currentPath = abs
			slot := app.activeSlot()
			slot.path = abs
			app.ed.SetRunes(nil)
			app.onTextChanged(0)
			slot.dirty = false
			app.lastEvent = fmt.Sprintf("Buffer for %s (file will be created on save)", abs)
			continue
		}
		if err := openPath(app, abs); err != nil {
			app.lastEvent = fmt.Sprintf("OPEN ERR: %v", err)
			continue
		}
		app.lastEvent = fmt.Sprintf("Opened %s", app.currentPath)
	}
}

func filterArgsToFiles(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		info, err := os.Stat(a)
		if err == nil {
			if info.Mode().IsRegular() {
				out = append(out, a)
			}
			continue
		}
		if errors.Is(err, os.ErrNotExist) {
			out = append(out, a)
		}
	}
	return out
}

func bufferLabel(app *appState) string {
	if app == nil {
		return "buf ?"
	}
	total := len(app.buffers)
	if total == 0 {
		return "buf 0/0"
	}
	name := app.currentPath
	if name == "" {
		name = "<" + app.tr("untitled") + ">"
	} else {
		name = filepath.Base(name)
	}
	return fmt.Sprintf("buf %d/%d [%s]", app.bufIdx+1, total, name)
}

func helpText() string {
	var sb strings.Builder
	sb.WriteString("Shortcuts\n\n")
	for _, h := range helpEntries {
		sb.WriteString(h.action)
		sb.WriteString(": ")
		sb.WriteString(h.keys)
		sb.WriteString("\n")
	}
	return sb.String()
}

func toggleComment(ed *editor.Editor) {
	if ed == nil {
		return
	}
	oldLines := editor.SplitLines(ed.Runes())
	if len(oldLines) == 0 {
		return
	}
	origSel := ed.Sel
	startLine := editor.CaretLineAt(oldLines, ed.Caret)
	endLine := startLine
	selA, selB := ed.Caret, ed.Caret
	if ed.Sel.Active {
		selA, selB = ed.Sel.Normalised()
		sl, _ := editor.LineColForPos(oldLines, selA)
		el, _ := editor.LineColForPos(oldLines, selB)
		startLine, endLine = sl, el
	}
	startLine = clamp(startLine, 0, len(oldLines)-1)
	endLine = clamp(endLine, startLine, len(oldLines)-1)

	allCommented := true
	for i := startLine; i <= endLine; i++ {
		if !strings.HasPrefix(oldLines[i], "//") {
			allCommented = false
			break
		}
	}

	lines := append([]string(nil), oldLines...)
	deltas := make([]int, len(lines))
	for i := startLine; i <= endLine; i++ {
		if allCommented {
			lines[i] = strings.TrimPrefix(lines[i], "//")
			deltas[i] = -2
		} else {
			lines[i] = "//" + lines[i]
			deltas[i] = 2
		}
	}

	cum := make([]int, len(deltas)+1)
	for i := range deltas {
		cum[i+1] = cum[i] + deltas[i]
	}
	adjustPos := func(oldPos int) int {
		ln, _ := editor.LineColForPos(oldLines, oldPos)
		if ln < 0 || ln >= len(oldLines) {
			return oldPos
		}
		return oldPos + cum[ln] + deltas[ln]
	}

	ed.SetRunes([]rune(strings.Join(lines, "\n")))
	if origSel.Active {
		ed.Sel.Active = true
		ed.Sel.A = adjustPos(selA)
		ed.Sel.B = adjustPos(selB)
	} else {
		ed.Sel.Active = false
	}
	ed.Caret = adjustPos(ed.Caret)
	ed.Caret = clamp(ed.Caret, 0, ed.RuneLen())
}

func ensureCaretVisible(app *appState, caretLine, totalLines, visibleLines int) {
	if app == nil {
		return
	}
	if caretLine < 0 {
		caretLine = 0
	}
	if totalLines < 0 {
		totalLines = 0
	}
	if visibleLines <= 0 {
		visibleLines = 1
	}
	first := app.scrollLine
	maxStart := max(0, totalLines-visibleLines)
	if first > maxStart {
		first = maxStart
	}
	if caretLine < first {
		first = caretLine
	} else if caretLine >= first+visibleLines {
		first = caretLine - visibleLines + 1
	}
	app.onScrolled(first, totalLines, visibleLines)
}

// searchNext jumps the caret to the next occurrence of query, wrapping
// around the buffer end.
func searchNext(app *appState, query []rune) bool {
	if app == nil || app.ed == nil || len(query) == 0 {
		return false
	}
	buf := app.ed.Runes()
	pos, ok := editor.FindInDir(buf, query, app.ed.Caret+1, editor.DirFwd, true)
	if !ok {
		return false
	}
	app.ed.MoveCaret(pos-app.ed.Caret, false)
	app.onCaretMoved()
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
