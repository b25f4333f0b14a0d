//go:build windows

package sensor

import "os"

var terminateSignal = os.Kill
