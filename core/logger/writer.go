package logger

import (
	"errors"
	"io"
	"sync"
)

// asyncWriter fans log lines out to sinks from a single background goroutine.
// slog handlers serialize calls to Write, so lines never interleave.
type asyncWriter struct {
	queue chan []byte
	flush chan chan error
	done  chan struct{}
	once  sync.Once
	sinks []io.Writer

	closeMu sync.RWMutex
	closed  bool

	mu  sync.Mutex
	err error
}

func newAsyncWriter(sinks []io.Writer, depth int) *asyncWriter {
	if depth <= 0 {
		depth = 256
	}
	w := &asyncWriter{
		queue: make(chan []byte, depth),
		flush: make(chan chan error),
		done:  make(chan struct{}),
	}
	for _, s := range sinks {
		if s != nil {
			w.sinks = append(w.sinks, s)
		}
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				return
			}
			w.writeAll(line)
		case ack := <-w.flush:
			// drain what was queued before the flush request
			for pending := len(w.queue); pending > 0; pending-- {
				line, ok := <-w.queue
				if !ok {
					break
				}
				w.writeAll(line)
			}
			ack <- w.lastErr()
		}
	}
}

// Write copies p and enqueues it. It blocks when the queue is full rather than dropping logs.
func (w *asyncWriter) Write(p []byte) (int, error) {
	if err := w.lastErr(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	line := make([]byte, len(p))
	copy(line, p)
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		return 0, errors.New("logger: writer closed")
	}
	w.queue <- line
	return len(p), nil
}

// Flush waits until every line queued before the call reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case <-w.done:
		return w.lastErr()
	case w.flush <- ack:
		return <-ack
	}
}

// Close drains the queue and reports the first encountered write error.
func (w *asyncWriter) Close() error {
	w.once.Do(func() {
		if err := w.Flush(); err != nil {
			w.setErr(err)
		}
		w.closeMu.Lock()
		w.closed = true
		close(w.queue)
		w.closeMu.Unlock()
	})
	<-w.done
	return w.lastErr()
}

func (w *asyncWriter) writeAll(p []byte) {
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			w.setErr(err)
			return
		}
	}
}

func (w *asyncWriter) lastErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *asyncWriter) setErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
