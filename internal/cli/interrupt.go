package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a context on SIGINT/SIGTERM and tells the user
// what survived.
type InterruptHandler struct {
	writer      io.Writer
	cancel      context.CancelFunc
	note        string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a handler writing its message to writer.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stderr
	}
	return &InterruptHandler{writer: writer}
}

// HandleInterrupts returns a context canceled on the first interrupt. note is
// printed after the interrupt message when non-empty. Call stop to release the
// signal handler.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, note string) (_ context.Context, stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancel = cancel
	h.note = note
	h.mu.Unlock()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			h.interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// interrupt prints the message once and cancels the context.
func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.interrupted {
		return
	}
	h.interrupted = true

	msg := "\n" + FormatWarning("Interrupted!")
	if h.note != "" {
		msg += "\n" + FormatInfo(h.note)
	}
	_, _ = fmt.Fprintln(h.writer, msg)

	if h.cancel != nil {
		h.cancel()
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
