//go:build !windows

package sensor

import "syscall"

var terminateSignal = syscall.SIGTERM
