// Shutdown signals for `emojigen watch` on Windows. SIGTERM does not exist
// there; the runtime delivers Ctrl+C, Ctrl+Break and console close as
// os.Interrupt.

//go:build windows

package main

import "os"

// shutdownSignals are the signals that stop the watch loop.
var shutdownSignals = []os.Signal{os.Interrupt}
