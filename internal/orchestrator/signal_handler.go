package orchestrator

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// SignalHandler cancels the service's root context on SIGINT/SIGTERM so
// in-flight loader submissions and ledger writes can finish cleanly.
type SignalHandler struct {
	sigChan chan os.Signal
}

// NewSignalHandler registers for interrupt and terminate signals.
func NewSignalHandler() *SignalHandler {
	sh := &SignalHandler{
		sigChan: make(chan os.Signal, 1),
	}
	signal.Notify(sh.sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sh
}

// HandleSignals waits in the background for a shutdown signal and then
// cancels the given context.
func (sh *SignalHandler) HandleSignals(cancel context.CancelFunc) {
	go func() {
		sig := <-sh.sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()
}
