package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorFaint  = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// consoleHandler renders records as single colored lines for interactive
// use, one "key=value" pair per attribute:
//
//	15:04:05 INFO  question set created set_id=3 owner_id=1
type consoleHandler struct {
	out    io.Writer
	level  slog.Level
	prefix string
	attrs  []slog.Attr
	mu     *sync.Mutex
}

func newConsoleHandler(out io.Writer, level slog.Level) *consoleHandler {
	return &consoleHandler{out: out, level: level, mu: &sync.Mutex{}}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	var buf bytes.Buffer

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(colorFaint + ts.Format("15:04:05") + colorReset + " ")
	buf.WriteString(levelTag(record.Level) + " ")
	buf.WriteString(record.Message)

	for _, attr := range h.attrs {
		h.writeAttr(&buf, h.prefix, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, attr)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *consoleHandler) writeAttr(buf *bytes.Buffer, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			h.writeAttr(buf, groupPrefix, member)
		}
		return
	}

	buf.WriteString(" " + colorFaint + prefix + attr.Key + "=" + colorReset)
	value := attr.Value.String()
	if strings.ContainsAny(value, " \t\n\"") {
		value = strconv.Quote(value)
	}
	buf.WriteString(value)
}

func levelTag(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return colorCyan + "DEBUG" + colorReset
	case level < slog.LevelWarn:
		return colorGreen + "INFO " + colorReset
	case level < slog.LevelError:
		return colorYellow + "WARN " + colorReset
	default:
		return colorRed + "ERROR" + colorReset
	}
}
