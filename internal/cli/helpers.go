package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/eventmodel/internal/logging"
)

// shutdownSignals cancel a SignalContext.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// SignalContext is cancelled by the first shutdown signal and remembers which one it was.
type SignalContext struct {
	context.Context
	// Cancel stops the context without a signal. Safe to call more than once.
	Cancel func()

	mu  sync.Mutex
	sig os.Signal
}

// NewSignalContext derives a SignalContext from parent.
// Signal delivery is released as soon as the context ends, whatever ended it.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	received := make(chan os.Signal, 1)
	signal.Notify(received, shutdownSignals...)
	go sc.await(received)
	return sc
}

func (sc *SignalContext) await(received chan os.Signal) {
	defer signal.Stop(received)
	select {
	case sig := <-received:
		sc.mu.Lock()
		sc.sig = sig
		sc.mu.Unlock()
		sc.Cancel()
	case <-sc.Done():
	}
}

// Signal reports the signal that ended the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sig
}

// CreateLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from the rendered output on Stdout).
func CreateLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
