//go:build windows

package bus

import "os"

var lifecycleSignals []os.Signal
