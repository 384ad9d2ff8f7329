// Package sysinfo detects the host facts reported alongside benchmark results.
//
// Detection runs once, typically from main, and the resulting Info value is
// passed to every component that needs it. Nothing in this package keeps
// global state.
package sysinfo

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Cache describes one level of the CPU cache hierarchy.
type Cache struct {
	Type  string `json:"type"`
	Level int    `json:"level"`
	Size  int    `json:"size"`
}

// Info is an immutable snapshot of the host.
type Info struct {
	NumCPUs        int     `json:"num_cpus"`
	PhysicalCores  int     `json:"physical_cores"`
	MHzPerCPU      float64 `json:"mhz_per_cpu"`
	BrandName      string  `json:"cpu_brand"`
	Caches         []Cache `json:"caches"`
	ScalingEnabled bool    `json:"cpu_scaling_enabled"`
	GoVersion      string  `json:"go_version"`
	OS             string  `json:"os"`
	Arch           string  `json:"arch"`
	Hostname       string  `json:"host_name"`
}

// governorGlob matches the frequency governor of every logical CPU on Linux.
const governorGlob = "/sys/devices/system/cpu/cpu*/cpufreq/scaling_governor"

// Detect inspects the host.
func Detect() Info {
	hostname, _ := os.Hostname()

	info := Info{
		NumCPUs:        runtime.NumCPU(),
		PhysicalCores:  cpuid.CPU.PhysicalCores,
		BrandName:      strings.TrimSpace(cpuid.CPU.BrandName),
		Caches:         caches(),
		ScalingEnabled: scalingEnabled(governorGlob),
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		Hostname:       hostname,
	}

	hz := cpuid.CPU.Hz
	if hz <= 0 {
		hz = cpuid.CPU.BoostFreq
	}
	info.MHzPerCPU = float64(hz) / 1e6

	return info
}

// caches lists the cache levels cpuid could identify. Unknown sizes are reported as -1.
func caches() []Cache {
	c := cpuid.CPU.Cache
	candidates := []Cache{
		{Type: "Data", Level: 1, Size: c.L1D},
		{Type: "Instruction", Level: 1, Size: c.L1I},
		{Type: "Unified", Level: 2, Size: c.L2},
		{Type: "Unified", Level: 3, Size: c.L3},
	}

	var found []Cache
	for _, cache := range candidates {
		if cache.Size > 0 {
			found = append(found, cache)
		}
	}
	return found
}

// scalingEnabled reports whether any CPU runs a governor other than "performance".
// Hosts that do not expose governors are assumed not to scale.
func scalingEnabled(pattern string) bool {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return false
	}

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(content)) != "performance" {
			return true
		}
	}
	return false
}
