package system

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// Resources is a snapshot of what the host can offer to the render pool.
type Resources struct {
	CPUs      int
	Available uint64 // bytes
	Total     uint64
}

func Probe() Resources {
	r := Resources{CPUs: 1}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		r.CPUs = n
	} else if err != nil {
		log.Printf("[!] Не удалось определить число ядер: %v", err)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		r.Available, r.Total = vm.Available, vm.Total
	} else {
		log.Printf("[!] Не удалось получить сведения о памяти: %v", err)
	}
	return r
}

// Workers returns how many frames of frameBytes each may be in flight at once:
// one per core, limited so that a quarter of free memory is enough.
func (r Resources) Workers(frameBytes uint64) int {
	n := r.CPUs
	if n < 1 {
		n = 1
	}
	if frameBytes > 0 && r.Available > 0 {
		// кадр живёт в пуле рендера и в очереди кодирования
		byMem := int(r.Available / 4 / (frameBytes * 2))
		if byMem < n {
			n = byMem
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// RecommendedWorkers probes the host and sizes the pool for w x h RGBA frames.
func RecommendedWorkers(w, h int) int {
	return Probe().Workers(uint64(w) * uint64(h) * 4)
}

// HasFFmpeg reports whether ffmpeg is on PATH.
func HasFFmpeg() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// HasEncoder reports whether the local ffmpeg build lists the encoder.
func HasEncoder(name string) bool {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return false
	}
	return containsEncoder(string(out), name)
}

func containsEncoder(list, name string) bool {
	for _, line := range strings.Split(list, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

func GetBestH264Encoder() string {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if containsEncoder(string(out), name) {
			return name
		}
	}
	return "libx264"
}
