package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/ivlev/proteinframes/internal/system"
)

// Stats is the performance summary of one run.
type Stats struct {
	Build    string
	Input    string
	Frames   int
	Total    time.Duration
	Render   time.Duration
	Encode   time.Duration
	Assemble time.Duration
	Warnings int
	Host     system.Resources
}

func (s Stats) FPS() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Total.Seconds()
}

func (s Stats) Report() string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Host: %d CPU | %d MiB free\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Assembly: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Warnings: %d\n"+
			"----------------------------\n",
		s.Build, s.Host.CPUs, s.Host.Available>>20, s.Total.Seconds(), s.Render.Seconds(),
		s.Encode.Seconds(), s.Assemble.Seconds(), s.FPS(), s.Warnings,
	)
}

// Append adds one line to the benchmark log.
func (s Stats) Append(path string, now time.Time) error {
	entry := fmt.Sprintf("[%s] Build: %s | Input: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		now.Format("2006-01-02 15:04:05"),
		s.Build,
		s.Input,
		s.Frames,
		s.Total.Seconds(),
		s.Render.Seconds(),
		s.Encode.Seconds(),
		s.FPS(),
	)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
