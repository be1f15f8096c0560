package metrics

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

var startedAt = time.Now()

// SysHealth is a point-in-time snapshot of the process and its data directory.
type SysHealth struct {
	AllocMB      uint64 `json:"allocMb"`
	SysMB        uint64 `json:"sysMb"`
	NumGC        uint32 `json:"numGc"`
	Goroutines   int    `json:"goroutines"`
	Uptime       string `json:"uptime"`
	DataDiskSize string `json:"dataDiskSize"`

	// Host figures are zero when the platform does not expose them.
	HostMemPercent  float64 `json:"hostMemPercent"`
	CPUPercent      float64 `json:"cpuPercent"`
	DiskUsedPercent float64 `json:"diskUsedPercent"`
}

// GetSysHealth collects real-time health data. dataPath is the directory
// holding the database and file cache.
func GetSysHealth(dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	health := SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		Uptime:       time.Since(startedAt).Truncate(time.Second).String(),
		DataDiskSize: humanize.IBytes(uint64(dirSize(dataPath))),
	}

	if v, err := mem.VirtualMemory(); err == nil {
		health.HostMemPercent = v.UsedPercent
	}
	// Zero interval compares against the previous call instead of blocking.
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		health.CPUPercent = pct[0]
	}
	if d, err := disk.Usage(diskRoot(dataPath)); err == nil {
		health.DiskUsedPercent = d.UsedPercent
	}
	return health
}

// diskRoot returns dataPath, or its closest existing parent.
func diskRoot(dataPath string) string {
	p, err := filepath.Abs(dataPath)
	if err != nil {
		return "/"
	}
	for {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size
}
