package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
)

var (
	infoColor  = color.New(color.FgGreen).SprintFunc()
	debugColor = color.New(color.FgCyan).SprintFunc()
	traceColor = color.New(color.FgYellow).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
)

// SimpleLogSink is a minimal human-readable logr.LogSink used by the isocli
// front end's -v flag. Colors are enabled only when the writer is a TTY.
type SimpleLogSink struct {
	writer    io.Writer
	verbosity int
	name      string
	mu        sync.Mutex
	useColor  bool
}

// NewSimpleLogSink builds a sink writing to w (os.Stdout if nil) at the given
// verbosity ceiling.
func NewSimpleLogSink(w io.Writer, verbosity int) *SimpleLogSink {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd())
	}
	return &SimpleLogSink{writer: w, verbosity: verbosity, useColor: useColor}
}

func (s *SimpleLogSink) Init(info logr.RuntimeInfo) {}

func (s *SimpleLogSink) Enabled(level int) bool {
	return level <= s.verbosity
}

func (s *SimpleLogSink) label(level int) string {
	switch {
	case level >= TRACE:
		return s.paint(traceColor, "TRACE")
	case level >= DEBUG:
		return s.paint(debugColor, "DEBUG")
	default:
		return s.paint(infoColor, "INFO")
	}
}

func (s *SimpleLogSink) paint(f func(a ...interface{}) string, text string) string {
	if !s.useColor {
		return text
	}
	return f(text)
}

func (s *SimpleLogSink) Info(level int, msg string, kv ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.writer, "[%s] %s %s\n", s.label(level), s.named(msg), formatKV(kv))
}

func (s *SimpleLogSink) Error(err error, msg string, kv ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.writer, "[%s] %s: %v %s\n", s.paint(errorColor, "ERROR"), s.named(msg), err, formatKV(kv))
}

// named prefixes msg with "[name]" when WithName has been called.
func (s *SimpleLogSink) named(msg string) string {
	if s.name == "" {
		return msg
	}
	return fmt.Sprintf("[%s] %s", s.name, msg)
}

func (s *SimpleLogSink) WithValues(kv ...interface{}) logr.LogSink {
	return s
}

func (s *SimpleLogSink) WithName(name string) logr.LogSink {
	clone := *s
	if s.name != "" {
		clone.name = s.name + "." + name
	} else {
		clone.name = name
	}
	return &clone
}

func formatKV(kv []interface{}) string {
	out := ""
	for i := 0; i+1 < len(kv); i += 2 {
		out += fmt.Sprintf("%v=%v ", kv[i], kv[i+1])
	}
	return out
}
