package governor

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/process"
)

const bytesPerMB = 1024 * 1024

// MemoryReader reports the current memory footprint of the process in MB
type MemoryReader interface {
	CurrentMB() (float64, error)
}

// ProcessMemory reads the resident set size of the running process
type ProcessMemory struct {
	proc *process.Process
}

func NewProcessMemory() (*ProcessMemory, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process: %w", err)
	}
	return &ProcessMemory{proc: proc}, nil
}

func (m *ProcessMemory) CurrentMB() (float64, error) {
	info, err := m.proc.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("read process memory: %w", err)
	}
	return float64(info.RSS) / bytesPerMB, nil
}

// RuntimeMemory reports memory obtained from the OS by the Go runtime.
// Used when process statistics are not available on the platform.
type RuntimeMemory struct{}

func (RuntimeMemory) CurrentMB() (float64, error) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return float64(stats.Sys-stats.HeapReleased) / bytesPerMB, nil
}

// NewMemoryReader prefers process RSS and falls back to runtime statistics
func NewMemoryReader() MemoryReader {
	pm, err := NewProcessMemory()
	if err != nil {
		return RuntimeMemory{}
	}
	if _, err := pm.CurrentMB(); err != nil {
		return RuntimeMemory{}
	}
	return pm
}
