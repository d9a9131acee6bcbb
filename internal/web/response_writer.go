package web

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter records the status and size of a response and runs hooks
// right before the first byte is written.
type ResponseWriter struct {
	http.ResponseWriter

	mu          sync.Mutex
	status      int
	size        int64
	written     bool
	beforeWrite []func()
}

// NewResponseWriter wraps w. The status defaults to 200.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers fn to run once, before headers are sent.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	w.beforeWrite = append(w.beforeWrite, fn)
	w.mu.Unlock()
}

// markWritten flips the written flag and returns pending hooks, or nil when
// headers were already sent.
func (w *ResponseWriter) markWritten(code int) ([]func(), bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return nil, false
	}
	w.written = true
	w.status = code
	hooks := w.beforeWrite
	w.beforeWrite = nil
	return hooks, true
}

func (w *ResponseWriter) WriteHeader(code int) {
	hooks, first := w.markWritten(code)
	if !first {
		return
	}
	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if hooks, first := w.markWritten(http.StatusOK); first {
		for _, fn := range hooks {
			fn()
		}
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush is required for server-sent events.
func (w *ResponseWriter) Flush() {
	if !w.Written() {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
