package httpapi

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"

	"postured/pkg/types"
)

// processStatus samples this process's memory and CPU usage. Nil when the
// platform does not expose them.
func processStatus() *types.ProcessStatus {
	pid := int32(os.Getpid())
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}
	ps := &types.ProcessStatus{PID: pid}
	if mi, err := p.MemoryInfo(); err == nil && mi != nil {
		ps.RSSBytes = mi.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		ps.CPUPercent = cpu
	}
	return ps
}
