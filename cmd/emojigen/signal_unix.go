// Shutdown signals for `emojigen watch` on Unix-like systems: SIGINT from
// the terminal and SIGTERM from process managers and container runtimes.

//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals are the signals that stop the watch loop.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
