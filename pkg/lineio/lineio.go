package lineio

import (
	"bytes"
	"strings"
)

// Writer wraps a line sink as an io.Writer. Bytes written through it are
// buffered and forwarded to the sink one complete line at a time, with the
// line terminator removed.
type Writer struct {
	Sink func(line string)
	buf  bytes.Buffer
}

func NewWriter(sink func(line string)) *Writer {
	return &Writer{Sink: sink}
}

func (w *Writer) Write(p []byte) (n int, err error) {
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.Sink(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush forwards any buffered bytes that were not newline-terminated.
// Call once after the producing process has exited.
func (w *Writer) Flush() {
	if w.buf.Len() == 0 {
		return
	}
	line := w.buf.String()
	w.buf.Reset()
	w.Sink(strings.TrimRight(line, "\r"))
}
