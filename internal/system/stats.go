package system

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Usage - снимок потребления ресурсов процессом для отчета о производительности
type Usage struct {
	RSSBytes      uint64
	CPUPercent    float64
	Threads       int32
	Goroutines    int
	SystemUsedPct float64
}

// Snapshot читает текущее потребление процесса. Поля, которые платформа
// не отдает, остаются нулевыми.
func Snapshot() (Usage, error) {
	u := Usage{Goroutines: runtime.NumGoroutine()}
	if vm, err := mem.VirtualMemory(); err == nil {
		u.SystemUsedPct = vm.UsedPercent
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return u, err
	}
	if mi, err := p.MemoryInfo(); err == nil {
		u.RSSBytes = mi.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		u.CPUPercent = cpu
	}
	if n, err := p.NumThreads(); err == nil {
		u.Threads = n
	}
	return u, nil
}

// RSSMiB - резидентная память в MiB
func (u Usage) RSSMiB() float64 {
	return float64(u.RSSBytes) / (1 << 20)
}
