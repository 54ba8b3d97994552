package engine

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/ivlev/proteinframes/internal/config"
)

const (
	ManifestName    = "manifest.json"
	manifestVersion = "1.0"
)

// Manifest describes a generated frame set for the viewer and the site build.
type Manifest struct {
	PDBID       string   `json:"pdbId"`
	Frames      int      `json:"frames"`
	Format      string   `json:"format"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	FPS         int      `json:"fps"`
	Duration    float64  `json:"duration"` // seconds at FPS
	GeneratedAt string   `json:"generatedAt"`
	Version     string   `json:"version"`
	Build       string   `json:"build,omitempty"`
	Videos      []string `json:"videos,omitempty"`
	Poster      string   `json:"poster,omitempty"`
	QRCode      string   `json:"qrCode,omitempty"`
}

func NewManifest(cfg *config.GeneratorConfig, now time.Time) Manifest {
	m := Manifest{
		PDBID:       cfg.PDBID,
		Frames:      cfg.FrameCount,
		Format:      strings.TrimPrefix(cfg.Extension(), "."),
		Width:       cfg.Width,
		Height:      cfg.Height,
		FPS:         cfg.FPS,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Version:     manifestVersion,
		Build:       cfg.BuildVersion,
	}
	if cfg.FPS > 0 {
		m.Duration = float64(cfg.FrameCount) / float64(cfg.FPS)
	}
	return m
}

func WriteManifest(m Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}
