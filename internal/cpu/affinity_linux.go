//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its OS thread and restricts that
// thread to a single core chosen from workerID. The returned release func
// must be called from the same goroutine. A failed affinity call still
// leaves the goroutine locked, and the error is returned for logging.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(coreFor(workerID))

	// 0 = calling thread
	err = unix.SchedSetaffinity(0, &mask)

	return runtime.UnlockOSThread, err
}
