package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"lc/config"
	"lc/editor"
	"lc/gutter"
	"lc/highlight"
	"lc/translate"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

type memoryClipboard struct {
	mu   sync.Mutex
	text string
}

func (m *memoryClipboard) GetText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *memoryClipboard) SetText(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}

func main() {
	if err := runTUI(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTUI() error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return err
	}
	catalog, err := translate.Load(languageCatalogPath())
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	root, _ := os.Getwd()
	clip := &memoryClipboard{}
	ed := editor.NewEditor("")
	ed.SetClipboard(clip)
	app := appState{
		cfg:         cfg,
		catalog:     catalog,
		lang:        cfg.Language,
		openRoot:    root,
		syntaxCheck: newCSyntaxChecker(),
		clipboard:   clip,
		rules:       highlight.NewCRuleSet(),
	}
	if !catalog.Has(app.lang) {
		app.lang = "en"
	}
	app.initBuffers(ed)
	dlog.logf("app", "started, root=%s lang=%s", root, app.lang)

	if w, err := newDiskWatcher(func() {
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}); err == nil {
		app.watcher = w
		defer w.Close()
	} else {
		dlog.logf("watch", "watcher unavailable: %v", err)
	}

	if len(os.Args) > 1 {
		loadStartupFiles(&app, filterArgsToFiles(os.Args[1:]))
	}

	theme := buildThemeStyles(cfg.Theme)
	for {
		pollDiskChanges(&app)
		drawTUI(screen, &app, theme)
		ev := screen.PollEvent()
		switch e := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if !handleTUIKey(&app, e) {
				return nil
			}
		case *tcell.EventInterrupt:
			// Wake-up redraw (watcher or build output).
		}
	}
}

func languageCatalogPath() string {
	if p := os.Getenv("LC_LANGUAGES"); p != "" {
		return p
	}
	if _, err := os.Stat("language.json"); err == nil {
		return "language.json"
	}
	return ""
}

func pollDiskChanges(app *appState) {
	if app == nil || app.watcher == nil {
		return
	}
	for i := range app.buffers {
		b := &app.buffers[i]
		if b.path != "" && app.watcher.Changed(b.path) {
			b.changedOnDisk = true
		}
	}
}

func handleTUIKey(app *appState, ev *tcell.EventKey) bool {
	if app == nil || ev == nil {
		return true
	}
	mods := tcellToMods(ev.Modifiers())

	if ev.Key() == tcell.KeyRune && (ev.Modifiers()&tcell.ModCtrl) == 0 {
		return dispatchTUIText(app, string(ev.Rune()), mods)
	}
	if ev.Key() == tcell.KeyRune && (ev.Modifiers()&tcell.ModCtrl) != 0 {
		if k, ok := ctrlRuneToKey(ev.Rune()); ok {
			return dispatchTUIKeyEvent(app, keyEvent{down: true, key: k, mods: mods | modCtrl})
		}
	}

	if k, ok := tcellKeyToKeyCode(ev); ok {
		keyMods := mods
		if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
			keyMods |= modCtrl
		}
		if ev.Key() == tcell.KeyBacktab {
			keyMods |= modShift
		}
		return dispatchTUIKeyEvent(app, keyEvent{down: true, key: k, mods: keyMods})
	}
	return true
}

func dispatchTUIKeyEvent(app *appState, e keyEvent) bool {
	if app.inputActive {
		return handleInputKey(app, e)
	}
	return handleKeyEvent(app, e)
}

func dispatchTUIText(app *appState, text string, mods modMask) bool {
	if app.inputActive {
		return handleInputText(app, text)
	}
	return handleTextEvent(app, text, mods)
}

func tcellToMods(m tcell.ModMask) modMask {
	var out modMask
	if (m & tcell.ModShift) != 0 {
		out |= modShift
	}
	if (m & tcell.ModCtrl) != 0 {
		out |= modCtrl
	}
	if (m & tcell.ModAlt) != 0 {
		out |= modLAlt
	}
	return out
}

func tcellKeyToKeyCode(ev *tcell.EventKey) (keyCode, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return keyUp, true
	case tcell.KeyDown:
		return keyDown, true
	case tcell.KeyPgUp:
		return keyPageUp, true
	case tcell.KeyPgDn:
		return keyPageDown, true
	case tcell.KeyHome:
		return keyHome, true
	case tcell.KeyEnd:
		return keyEnd, true
	case tcell.KeyEscape:
		return keyEscape, true
	case tcell.KeyTAB, tcell.KeyBacktab:
		return keyTab, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return keyBackspace, true
	case tcell.KeyDelete:
		return keyDelete, true
	case tcell.KeyEnter:
		return keyReturn, true
	case tcell.KeyLeft:
		return keyLeft, true
	case tcell.KeyRight:
		return keyRight, true
	case tcell.KeyCtrlA:
		return keyA, true
	case tcell.KeyCtrlB:
		return keyB, true
	case tcell.KeyCtrlC:
		return keyC, true
	case tcell.KeyCtrlE:
		return keyE, true
	case tcell.KeyCtrlF:
		return keyF, true
	// tcell.KeyCtrlI is the same constant as tcell.KeyTAB (handled above);
	// many terminals encode Ctrl+Tab as Ctrl+I.
	case tcell.KeyCtrlK:
		return keyK, true
	case tcell.KeyCtrlL:
		return keyL, true
	case tcell.KeyCtrlO:
		return keyO, true
	case tcell.KeyCtrlQ:
		return keyQ, true
	case tcell.KeyCtrlR:
		return keyR, true
	case tcell.KeyCtrlS:
		return keyS, true
	case tcell.KeyCtrlU:
		return keyU, true
	case tcell.KeyCtrlV:
		return keyV, true
	case tcell.KeyCtrlW:
		return keyW, true
	case tcell.KeyCtrlX:
		return keyX, true
	}
	return keyUnknown, false
}

func ctrlRuneToKey(r rune) (keyCode, bool) {
	switch strings.ToLower(string(r)) {
	case "q":
		return keyQ, true
	case "w":
		return keyW, true
	case "e":
		return keyE, true
	case "r":
		return keyR, true
	case "a":
		return keyA, true
	case "b":
		return keyB, true
	case "s":
		return keyS, true
	case "f":
		return keyF, true
	case "o":
		return keyO, true
	case "l":
		return keyL, true
	case "k":
		return keyK, true
	case "u":
		return keyU, true
	case "c":
		return keyC, true
	case "x":
		return keyX, true
	case "v":
		return keyV, true
	case "i":
		return keyTab, true
	case "/", "?":
		return keySlash, true
	case ",", "<":
		return keyComma, true
	case ".", ">":
		return keyPeriod, true
	}
	return keyUnknown, false
}

func runeToKeyCode(r rune) (keyCode, bool) {
	switch strings.ToLower(string(r)) {
	case "a":
		return keyA, true
	case "b":
		return keyB, true
	case "c":
		return keyC, true
	case "e":
		return keyE, true
	case "f":
		return keyF, true
	case "k":
		return keyK, true
	case "l":
		return keyL, true
	case "o":
		return keyO, true
	case "q":
		return keyQ, true
	case "r":
		return keyR, true
	case "s":
		return keyS, true
	case "u":
		return keyU, true
	case "v":
		return keyV, true
	case "w":
		return keyW, true
	case "x":
		return keyX, true
	case "/", "?":
		return keySlash, true
	case ",", "<":
		return keyComma, true
	case ".", ">":
		return keyPeriod, true
	case " ":
		return keySpace, true
	}
	return keyUnknown, false
}

func inferShiftFromRune(r rune) bool {
	if unicode.IsUpper(r) {
		return true
	}
	switch r {
	case '<', '>', '?', '_', '+':
		return true
	default:
		return false
	}
}

type themeStyles struct {
	base      tcell.Style
	gutter    tcell.Style
	current   tcell.Style
	selection tcell.Style
	status    tcell.Style
	input     tcell.Style
	warn      tcell.Style
	cats      [highlight.CatCallable + 1]tcell.Style
}

func buildThemeStyles(th config.Theme) themeStyles {
	bg := tcell.GetColor(th.Background)
	fg := tcell.GetColor(th.Foreground)
	base := tcell.StyleDefault.Background(bg).Foreground(fg)
	current := tcell.StyleDefault.Background(tcell.GetColor(th.CurrentLine)).Foreground(fg)

	var ts themeStyles
	ts.base = base
	ts.current = current
	ts.gutter = tcell.StyleDefault.Background(tcell.GetColor(th.GutterBg)).Foreground(tcell.GetColor(th.GutterFg))
	ts.selection = tcell.StyleDefault.Background(tcell.GetColor(th.Selection)).Foreground(fg)
	ts.status = tcell.StyleDefault.Background(tcell.GetColor(th.GutterBg)).Foreground(fg)
	ts.input = base.Foreground(tcell.GetColor(th.GutterFg))
	ts.warn = ts.status.Foreground(tcell.GetColor(th.Keyword))

	ts.cats[highlight.CatNone] = base
	ts.cats[highlight.CatKeyword] = base.Foreground(tcell.GetColor(th.Keyword)).Bold(true)
	ts.cats[highlight.CatType] = base.Foreground(tcell.GetColor(th.Type)).Bold(true)
	ts.cats[highlight.CatNumber] = base.Foreground(tcell.GetColor(th.Number))
	ts.cats[highlight.CatString] = base.Foreground(tcell.GetColor(th.String))
	ts.cats[highlight.CatComment] = base.Foreground(tcell.GetColor(th.Comment)).Italic(true)
	ts.cats[highlight.CatPreproc] = base.Foreground(tcell.GetColor(th.Preproc))
	ts.cats[highlight.CatCallable] = base.Foreground(tcell.GetColor(th.Callable))
	return ts
}

func (ts *themeStyles) forCategory(cat highlight.Category, currentLine bool) tcell.Style {
	st := ts.base
	if cat >= 0 && int(cat) < len(ts.cats) {
		st = ts.cats[cat]
	}
	if currentLine {
		_, bg, _ := ts.current.Decompose()
		st = st.Background(bg)
	}
	return st
}

func drawTUI(s tcell.Screen, app *appState, theme themeStyles) {
	if app == nil || app.ed == nil {
		s.Clear()
		s.Show()
		return
	}
	w, h := s.Size()
	if w < 10 || h < 4 {
		s.Clear()
		s.Show()
		return
	}

	lines, lineStarts := renderData(app)
	contentH := h - 2
	cLine := editor.CaretLineAt(lines, app.ed.Caret)
	cCol := editor.CaretColAt(lines, app.ed.Caret)
	ensureCaretVisible(app, cLine, len(lines), contentH)
	app.onCaretMoved()

	gutterW := 0
	if app.cfg.Gutter {
		gutterW = gutter.Width(len(lines))
	}
	view := gutter.Viewport{First: app.scrollLine, Height: contentH}.Clamp(len(lines))
	currentBlock, haveCurrent := app.lineTracker.CurrentBlock()

	selA, selB := app.ed.Sel.Normalised()
	slot := app.activeSlot()

	numbers := map[int]string{}
	if gutterW > 0 {
		for _, gl := range gutter.Lines(view, len(lines)) {
			numbers[gl.Block] = gl.Number
		}
	}

	for row := 0; row < contentH; row++ {
		ln := view.First + row
		fillRow(s, row, w, theme.base)
		if ln >= len(lines) {
			continue
		}
		if gutterW > 0 {
			g := fmt.Sprintf(" %s  ", numbers[ln])
			drawCellText(s, 0, row, padRight(g, gutterW), theme.gutter)
		}
		onCurrent := haveCurrent && ln == currentBlock
		spans := slot.hl.GetOrCompute(ln, lines[ln])
		drawStyledLine(s, gutterW, row, lines[ln], lineStarts[ln], spans, &theme, onCurrent, app.ed.Sel.Active, selA, selB, app.cfg.TabWidth)
	}

	pos := editor.PositionAt(lines, app.ed.Caret)
	status := fmt.Sprintf("%s | %s | %s", bufferLabel(app), app.catalog.Name(app.lang), pos.Label())
	if slot != nil && slot.dirty {
		status += " | *unsaved*"
	}
	if slot != nil && slot.changedOnDisk {
		status += " | changed on disk (Esc+R to reload)"
	}
	if app.lastEvent != "" {
		status += " | " + app.lastEvent
	}
	st := theme.status
	if slot != nil && slot.changedOnDisk {
		st = theme.warn
	}
	drawCellText(s, 0, h-2, padRight(status, w), st)

	input := ""
	if app.inputActive {
		input = app.inputPrompt + app.inputValue
	} else {
		input = fmt.Sprintf("Ctrl+O %s | Ctrl+W %s | Ctrl+R %s | Ctrl+? help",
			app.tr("open"), app.tr("save"), app.tr("run"))
	}
	drawCellText(s, 0, h-1, padRight(input, w), theme.input)

	caretY := cLine - view.First
	caretX := gutterW + visualColForRuneCol(lines[cLine], cCol, app.cfg.TabWidth)
	if caretY >= 0 && caretY < contentH && caretX >= 0 && caretX < w && !app.inputActive {
		s.ShowCursor(caretX, caretY)
	} else {
		s.HideCursor()
	}
	s.Show()
}

// renderData returns the split lines and per-line start offsets for the
// active buffer, memoized on the buffer's text revision.
func renderData(app *appState) ([]string, []int) {
	if app == nil || app.ed == nil {
		return []string{""}, []int{0}
	}
	bufIdx := app.bufIdx
	textRev := 0
	if slot := app.activeSlot(); slot != nil {
		textRev = slot.textRev
	}
	path := app.currentPath
	if app.render.bufIdx == bufIdx && app.render.textRev == textRev && app.render.path == path && len(app.render.lines) > 0 {
		return app.render.lines, app.render.lineStarts
	}

	lines := editor.SplitLines(app.ed.Runes())
	if len(lines) == 0 {
		lines = []string{""}
	}
	starts := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		starts[i] = pos
		pos += highlight.RuneLen(line) + 1
	}
	if slot := app.activeSlot(); slot != nil {
		slot.hl.Truncate(len(lines))
	}
	app.render = renderCache{
		bufIdx:     bufIdx,
		textRev:    textRev,
		path:       path,
		lines:      lines,
		lineStarts: starts,
	}
	return lines, starts
}

func drawCellText(s tcell.Screen, x, y int, text string, st tcell.Style) {
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w <= 0 {
			continue
		}
		s.SetContent(x, y, r, nil, st)
		x += w
	}
}

func fillRow(s tcell.Screen, y, w int, st tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, st)
	}
}

func drawStyledLine(s tcell.Screen, x, y int, line string, lineStart int, spans []highlight.Span, theme *themeStyles, currentLine, selActive bool, selA, selB, tabWidth int) {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	visual := 0
	for i, r := range []rune(line) {
		st := theme.forCategory(highlight.CategoryAt(spans, i), currentLine)
		if selActive {
			pos := lineStart + i
			if pos >= selA && pos < selB {
				st = theme.selection
			}
		}
		if r == '\t' {
			next := ((visual / tabWidth) + 1) * tabWidth
			for visual < next {
				s.SetContent(x+visual, y, ' ', nil, st)
				visual++
			}
			continue
		}
		s.SetContent(x+visual, y, r, nil, st)
		visual += max(1, runewidth.RuneWidth(r))
	}
	if currentLine {
		// Extend the current-line background across the rest of the row.
		w, _ := s.Size()
		for xx := x + visual; xx < w; xx++ {
			s.SetContent(xx, y, ' ', nil, theme.current)
		}
	}
}

// visualColForRuneCol maps a character column to its screen column,
// expanding tabs and wide runes.
func visualColForRuneCol(line string, runeCol, width int) int {
	if width <= 0 {
		width = 4
	}
	col := 0
	vis := 0
	for _, r := range line {
		if col >= runeCol {
			break
		}
		if r == '\t' {
			vis = ((vis / width) + 1) * width
		} else {
			vis += max(1, runewidth.RuneWidth(r))
		}
		col++
	}
	return vis
}

func padRight(s string, w int) string {
	rs := []rune(s)
	if len(rs) >= w {
		return string(rs[:w])
	}
	return s + strings.Repeat(" ", w-len(rs))
}
