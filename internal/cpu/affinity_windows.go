//go:build windows

package cpu

import (
	"runtime"

	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// Pin locks the calling goroutine to its OS thread and restricts that
// thread to a single core chosen from workerID. The returned release func
// must be called from the same goroutine.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()

	mask := uintptr(1) << uint(coreFor(workerID))
	prev, _, callErr := setThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if prev == 0 {
		err = callErr
	}

	return runtime.UnlockOSThread, err
}
