package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExePathFor(t *testing.T) {
	if got := exePathFor("/src/prog.c"); got != "/src/prog" {
		t.Fatalf("want /src/prog, got %q", got)
	}
	if got := exePathFor("prog"); got != "prog" {
		t.Fatalf("extensionless: got %q", got)
	}
}

func TestBuildAndRunCreatesBuildBuffer(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.c")
	if err := os.WriteFile(src, []byte("int main(void){return 0;}\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	app := newTestApp("")
	if err := openPath(app, src); err != nil {
		t.Fatalf("open: %v", err)
	}

	// Stub out the process launch; exercised paths are buffer plumbing.
	origStart := startBuildRun
	defer func() { startBuildRun = origStart }()
	var started string
	startBuildRun = func(path string, onOut func(string), onDone func(error)) error {
		started = path
		onOut("ok\n")
		onDone(nil)
		return nil
	}

	if err := buildAndRunCurrent(app); err != nil {
		t.Fatalf("build: %v", err)
	}
	if started != src {
		t.Fatalf("build target: want %q, got %q", src, started)
	}
	if len(app.buffers) != 2 {
		t.Fatalf("want source + build buffer, got %d", len(app.buffers))
	}
	slot := app.activeSlot()
	if !slot.readonly {
		t.Fatalf("build buffer must be read-only")
	}
	if !strings.HasPrefix(slot.path, "[build] ") {
		t.Fatalf("build buffer label: got %q", slot.path)
	}
	out := app.ed.String()
	if !strings.Contains(out, "gcc "+src) {
		t.Fatalf("missing compile header:\n%s", out)
	}
	if !strings.Contains(out, "ok\n") || !strings.Contains(out, "[exit] ok") {
		t.Fatalf("missing streamed output:\n%s", out)
	}
}

func TestBuildAndRunUntitledFails(t *testing.T) {
	app := newTestApp("int main(void){}")
	if err := buildAndRunCurrent(app); err == nil {
		t.Fatalf("untitled buffer cannot be built")
	}
	if len(app.buffers) != 1 {
		t.Fatalf("failed build must not leave a build buffer")
	}
}

func TestAppendRunOutputAppendsAtEnd(t *testing.T) {
	app := newTestApp("line1\n")
	app.ed.Caret = 0
	appendRunOutput(app.ed, "line2\n")
	if got := app.ed.String(); got != "line1\nline2\n" {
		t.Fatalf("append: got %q", got)
	}
	if app.ed.Caret != app.ed.RuneLen() {
		t.Fatalf("caret should trail the output")
	}
}
