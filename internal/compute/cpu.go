package compute

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Host describes the processor the simulation runs on.
type Host struct {
	Arch       string
	LogicalCPU int
	CacheLine  int
	Features   []string
}

// DefaultWorkers returns half the logical cores, at least one.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()/2)
}

// ClampWorkers bounds a requested worker count to [1, n]. A non-positive
// request selects DefaultWorkers.
func ClampWorkers(requested, n int) int {
	if requested <= 0 {
		requested = DefaultWorkers()
	}
	if n < 1 {
		n = 1
	}
	return min(requested, n)
}

func Describe() Host {
	h := Host{
		Arch:       runtime.GOARCH,
		LogicalCPU: runtime.NumCPU(),
		CacheLine:  int(unsafe.Sizeof(cpu.CacheLinePad{})),
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		h.Features = flags(map[string]bool{
			"sse4.1":  cpu.X86.HasSSE41,
			"avx":     cpu.X86.HasAVX,
			"avx2":    cpu.X86.HasAVX2,
			"fma":     cpu.X86.HasFMA,
			"avx512f": cpu.X86.HasAVX512F,
		})
	case "arm64":
		h.Features = flags(map[string]bool{
			"asimd":   cpu.ARM64.HasASIMD,
			"fp":      cpu.ARM64.HasFP,
			"sve":     cpu.ARM64.HasSVE,
			"atomics": cpu.ARM64.HasATOMICS,
		})
	}
	return h
}

func (h Host) String() string {
	features := "none"
	if len(h.Features) > 0 {
		features = strings.Join(h.Features, " ")
	}
	return fmt.Sprintf("%s, %d logical cpus, %dB cache line, features: %s",
		h.Arch, h.LogicalCPU, h.CacheLine, features)
}

func flags(m map[string]bool) []string {
	var out []string
	for _, name := range []string{"sse4.1", "avx", "avx2", "fma", "avx512f", "asimd", "fp", "sve", "atomics"} {
		if m[name] {
			out = append(out, name)
		}
	}
	return out
}
