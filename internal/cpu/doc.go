// Package cpu pins worker goroutines to OS threads and CPU cores for
// CPU-bound execution.
package cpu

import "runtime"

// Count returns the number of logical CPUs available to the process.
func Count() int {
	return runtime.NumCPU()
}

// coreFor maps a worker id onto a valid core index.
func coreFor(workerID int) int {
	n := runtime.NumCPU()
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % n
}
