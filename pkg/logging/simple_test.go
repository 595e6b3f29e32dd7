package logging

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimpleLogSinkDefaultWriter(t *testing.T) {
	s := NewSimpleLogSink(nil, 1)
	require.Equal(t, os.Stdout, s.writer)
}

func TestSimpleLogSinkEnabled(t *testing.T) {
	s := NewSimpleLogSink(&bytes.Buffer{}, DEBUG)
	require.True(t, s.Enabled(0))
	require.True(t, s.Enabled(DEBUG))
	require.False(t, s.Enabled(TRACE))
}

func TestSimpleLogSinkInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG)
	s.Info(0, "hello world", "key", "value")
	out := buf.String()
	require.Contains(t, out, "hello world")
	require.Contains(t, out, "key=value")
	require.Contains(t, out, "[INFO]")
}

func TestSimpleLogSinkError(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, 0)
	s.Error(errors.New("sample error"), "an error occurred", "context", "testing")
	out := buf.String()
	require.Contains(t, out, "[ERROR]")
	require.Contains(t, out, "an error occurred")
	require.Contains(t, out, "context=testing")
	require.Contains(t, out, "sample error")
}

func TestSimpleLogSinkWithName(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG)
	named := s.WithName("reader")
	named.Info(0, "opened")
	require.Contains(t, buf.String(), "[reader] opened")
}

func TestSimpleLogSinkChainedWithName(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG)
	chained := s.WithName("a").WithName("b")
	chained.Info(0, "chained")
	require.Contains(t, buf.String(), "[a.b] chained")
}

func TestSimpleLogSinkLevelLabels(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, TRACE)
	s.Info(DEBUG, "debug line")
	s.Info(TRACE, "trace line")
	out := buf.String()
	require.True(t, strings.Contains(out, "[DEBUG]"))
	require.True(t, strings.Contains(out, "[TRACE]"))
}
