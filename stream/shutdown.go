package stream

import (
	"os"
	"os/signal"
	"syscall"
)

// InstallInterruptHook registers a process-interrupt handler that calls
// stop() and then exits the process. It is opt-in: nothing in this
// package registers a signal handler on its own (spec.md §5, §9 "Global
// state: None beyond what a caller constructs"). Call the returned
// function to deregister the handler without exiting.
func InstallInterruptHook(stop func()) (deregister func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			stop()
			os.Exit(0)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
