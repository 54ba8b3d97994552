package config

import (
	"fmt"
	"strings"
)

type GeneratorConfig struct {
	PDBID        string `yaml:"pdbId"`
	PDBFile      string `yaml:"pdbFile"`
	FrameCount   int    `yaml:"frames"`
	OutputDir    string `yaml:"output"`
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	Format       string `yaml:"format"`
	Quality      int    `yaml:"quality"`
	Background   string `yaml:"background"`
	Workers      int    `yaml:"workers"`
	Video        string `yaml:"video"`
	FPS          int    `yaml:"fps"`
	CRF          int    `yaml:"crf"`
	Detector     string `yaml:"detector"`
	QRCode       bool   `yaml:"qrCode"`
	ShowStats    bool   `yaml:"showStats"`
	BuildVersion string `yaml:"-"`
}

func DefaultGenerator() GeneratorConfig {
	return GeneratorConfig{
		PDBID:      "2K6O", // LL-37
		FrameCount: 180,
		OutputDir:  "./public/assets/protein-frames/",
		Width:      800,
		Height:     600,
		Format:     "webp",
		Quality:    85,
		Background: "#fafafa",
		Video:      "none",
		FPS:        30,
		CRF:        30,
		Detector:   "contrast",
	}
}

// Extension returns the frame file extension with a leading dot.
func (g GeneratorConfig) Extension() string {
	return "." + strings.TrimPrefix(strings.ToLower(g.Format), ".")
}

func (g GeneratorConfig) Validate() error {
	if g.FrameCount < 1 {
		return fmt.Errorf("количество кадров должно быть >= 1, получено %d", g.FrameCount)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("некорректный размер кадра %dx%d", g.Width, g.Height)
	}
	if !IsFrameFormat(g.Extension()) {
		return fmt.Errorf("неизвестный формат %q (webp, png, jpg, jpeg)", g.Format)
	}
	if g.Quality < 1 || g.Quality > 100 {
		return fmt.Errorf("качество должно быть в диапазоне 1..100, получено %d", g.Quality)
	}
	switch g.Video {
	case "", "none", "mp4", "webm", "both":
	default:
		return fmt.Errorf("неизвестный режим видео %q (none, mp4, webm, both)", g.Video)
	}
	if g.Video != "" && g.Video != "none" && g.FPS <= 0 {
		return fmt.Errorf("FPS должен быть > 0 для сборки видео")
	}
	return nil
}
