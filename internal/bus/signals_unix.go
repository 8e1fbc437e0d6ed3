//go:build !windows

package bus

import (
	"os"
	"syscall"
)

// SIGCONT stands in for resume and SIGHUP for regaining focus.
var lifecycleSignals = []os.Signal{syscall.SIGCONT, syscall.SIGHUP}
