package main

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"lc/editor"
)

var startBuildRun = startBuildRunProcess

// buildAndRunCurrent saves the active buffer, runs the advisory syntax
// check, then compiles it with gcc and runs the produced executable.
// All output streams into a fresh read-only [build] buffer.
func buildAndRunCurrent(app *appState) error {
	if app == nil || app.ed == nil {
		return fmt.Errorf("no app state")
	}
	if err := saveCurrent(app); err != nil {
		return err
	}
	src := app.currentPath
	if strings.TrimSpace(src) == "" {
		return fmt.Errorf("no file to build")
	}

	var advisory []string
	if app.syntaxCheck != nil {
		for _, se := range app.syntaxCheck.errorsFor(app.ed.String()) {
			advisory = append(advisory, fmt.Sprintf("syntax: line %d, col %d", se.Line+1, se.Col+1))
		}
	}

	title := fmt.Sprintf("[build] %s", filepath.Base(src))
	app.addBuffer()
	buildIdx := app.bufIdx
	slot := app.activeSlot()
	slot.path = title
	slot.readonly = true
	slot.dirty = false
	app.currentPath = title
	buildEd := app.ed

	header := fmt.Sprintf("$ gcc %s -o %s\n", src, exePathFor(src))
	if len(advisory) > 0 {
		header += strings.Join(advisory, "\n") + "\n"
	}
	buildEd.SetRunes([]rune(header + "\n"))
	buildEd.Caret = buildEd.RuneLen()
	buildEd.Sel = editor.Sel{}
	app.touchBuildBuffer(buildIdx)

	appendOut := func(text string) {
		appendRunOutput(buildEd, text)
		app.touchBuildBuffer(buildIdx)
	}
	onDone := func(err error) {
		if err != nil {
			appendOut(fmt.Sprintf("\n[exit] %v\n", err))
			return
		}
		appendOut("\n[exit] ok\n")
	}
	dlog.logf("build", "gcc %s", src)
	return startBuildRun(src, appendOut, onDone)
}

func (app *appState) touchBuildBuffer(idx int) {
	if app == nil || idx < 0 || idx >= len(app.buffers) {
		return
	}
	app.buffers[idx].rev++
	app.buffers[idx].textRev++
	app.buffers[idx].dirty = false
}

func exePathFor(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src))
}

// startBuildRunProcess compiles src with gcc and, if that succeeds,
// runs the executable. Both stages stream their output through onOut
// from a background goroutine.
func startBuildRunProcess(src string, onOut func(string), onDone func(error)) error {
	if strings.TrimSpace(src) == "" {
		return fmt.Errorf("no source file")
	}
	exe := exePathFor(src)
	if exe == src {
		exe = src + ".out"
	}

	go func() {
		compile := exec.Command("gcc", src, "-o", exe)
		compile.Dir = filepath.Dir(src)
		out, err := compile.CombinedOutput()
		if len(out) > 0 && onOut != nil {
			onOut(string(out))
		}
		if err != nil {
			if onDone != nil {
				onDone(fmt.Errorf("compile failed: %w", err))
			}
			return
		}
		if onOut != nil {
			onOut(fmt.Sprintf("$ %s\n", exe))
		}
		if onDone != nil {
			onDone(streamCommand(exec.Command(exe), onOut))
		}
	}()
	return nil
}

// streamCommand runs cmd, feeding stdout and stderr lines to onOut, and
// returns the process exit error.
func streamCommand(cmd *exec.Cmd, onOut func(string)) error {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	drain := func(rd io.Reader, prefix string) {
		sc := bufio.NewScanner(rd)
		for sc.Scan() {
			if onOut != nil {
				onOut(prefix + sc.Text() + "\n")
			}
		}
	}
	done := make(chan struct{}, 2)
	go func() { drain(stdout, ""); done <- struct{}{} }()
	go func() { drain(stderr, "[stderr] "); done <- struct{}{} }()
	<-done
	<-done
	return cmd.Wait()
}

func appendRunOutput(ed *editor.Editor, s string) {
	if ed == nil || s == "" {
		return
	}
	ed.Caret = ed.RuneLen()
	ed.InsertText(s)
	ed.Caret = ed.RuneLen()
}
