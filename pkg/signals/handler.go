package signals

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mudler/xlog"
)

var (
	signalHandlers      []func()
	signalHandlersMutex sync.Mutex
	signalHandlersOnce  sync.Once
)

// RegisterGracefulTerminationHandler adds fn to the functions run, in
// registration order, on SIGINT or SIGTERM before the process exits.
func RegisterGracefulTerminationHandler(fn func()) {
	signalHandlersOnce.Do(func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		go signalHandler(c, os.Exit)
	})

	signalHandlersMutex.Lock()
	defer signalHandlersMutex.Unlock()
	signalHandlers = append(signalHandlers, fn)
}

// Context returns a context cancelled on SIGINT or SIGTERM. It does not run
// the termination handlers or exit: the caller sees the cancellation and
// decides how to finish. stop releases the signal registration.
func Context(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	return notifyContext(parent, c, func() { signal.Stop(c) })
}

func notifyContext(parent context.Context, c <-chan os.Signal, release func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	go func() {
		select {
		case sig := <-c:
			xlog.Info("Received termination signal, stopping", "signal", sig.String())
			cancel(fmt.Errorf("received %s", sig))
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		release()
		cancel(context.Canceled)
	}
}

func signalHandler(c chan os.Signal, exit func(int)) {
	sig := <-c
	xlog.Info("Received termination signal, shutting down", "signal", sig.String())

	runHandlers()
	exit(0)
}

func runHandlers() {
	signalHandlersMutex.Lock()
	defer signalHandlersMutex.Unlock()
	for _, fn := range signalHandlers {
		fn()
	}
}
