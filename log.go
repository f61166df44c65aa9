package main

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Debug logging is opt-in: LC_DEBUG names a file to append to. With the
// terminal owned by tcell, stderr is not usable for diagnostics.
type debugLogger struct {
	mu sync.Mutex
	f  *os.File
}

var dlog = openDebugLogger()

func openDebugLogger() *debugLogger {
	path := os.Getenv("LC_DEBUG")
	if path == "" {
		return &debugLogger{}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &debugLogger{}
	}
	return &debugLogger{f: f}
}

func (l *debugLogger) logf(category, format string, args ...any) {
	if l == nil || l.f == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.f, "%s DEBUG [%s] %s\n",
		time.Now().Format("2006-01-02 15:04:05.000"), category, fmt.Sprintf(format, args...))
}
