package config

import (
	"fmt"
	"time"
)

// Config описывает последовательность кадров одной визуализации.
// После сборки через Default().Merge(...) не изменяется.
type Config struct {
	FrameCount        int           `yaml:"frameCount"`
	FrameBasePath     string        `yaml:"frameBasePath"`
	FrameFormat       string        `yaml:"frameFormat"`
	ScrollSensitivity float64       `yaml:"scrollSensitivity"`
	SmoothingFactor   float64       `yaml:"smoothingFactor"`
	WheelSensitivity  float64       `yaml:"wheelSensitivity"`
	Width             int           `yaml:"width"`
	Height            int           `yaml:"height"`
	ThrottleInterval  time.Duration `yaml:"throttleInterval"`
	LoadTimeout       time.Duration `yaml:"loadTimeout"`
	LoadWorkers       int           `yaml:"loadWorkers"`
}

// Overrides holds caller-supplied values. Nil fields keep the default.
type Overrides struct {
	FrameCount        *int           `yaml:"frameCount"`
	FrameBasePath     *string        `yaml:"frameBasePath"`
	FrameFormat       *string        `yaml:"frameFormat"`
	ScrollSensitivity *float64       `yaml:"scrollSensitivity"`
	SmoothingFactor   *float64       `yaml:"smoothingFactor"`
	WheelSensitivity  *float64       `yaml:"wheelSensitivity"`
	Width             *int           `yaml:"width"`
	Height            *int           `yaml:"height"`
	ThrottleInterval  *time.Duration `yaml:"throttleInterval"`
	LoadTimeout       *time.Duration `yaml:"loadTimeout"`
	LoadWorkers       *int           `yaml:"loadWorkers"`
}

var frameFormats = []string{".webp", ".png", ".jpg", ".jpeg"}

func Default() Config {
	return Config{
		FrameCount:        180,
		FrameBasePath:     "/Portfolio/assets/protein-frames/",
		FrameFormat:       ".webp",
		ScrollSensitivity: 0.5,
		SmoothingFactor:   0.1,
		WheelSensitivity:  0.1,
		Width:             800,
		Height:            600,
		ThrottleInterval:  16 * time.Millisecond,
		LoadWorkers:       16,
	}
}

// Merge returns a copy of c with every set field of o applied.
func (c Config) Merge(o Overrides) Config {
	if o.FrameCount != nil {
		c.FrameCount = *o.FrameCount
	}
	if o.FrameBasePath != nil {
		c.FrameBasePath = *o.FrameBasePath
	}
	if o.FrameFormat != nil {
		c.FrameFormat = *o.FrameFormat
	}
	if o.ScrollSensitivity != nil {
		c.ScrollSensitivity = *o.ScrollSensitivity
	}
	if o.SmoothingFactor != nil {
		c.SmoothingFactor = *o.SmoothingFactor
	}
	if o.WheelSensitivity != nil {
		c.WheelSensitivity = *o.WheelSensitivity
	}
	if o.Width != nil {
		c.Width = *o.Width
	}
	if o.Height != nil {
		c.Height = *o.Height
	}
	if o.ThrottleInterval != nil {
		c.ThrottleInterval = *o.ThrottleInterval
	}
	if o.LoadTimeout != nil {
		c.LoadTimeout = *o.LoadTimeout
	}
	if o.LoadWorkers != nil {
		c.LoadWorkers = *o.LoadWorkers
	}
	return c
}

func (c Config) Validate() error {
	if c.FrameCount < 0 {
		return fmt.Errorf("frameCount не может быть отрицательным: %d", c.FrameCount)
	}
	if !IsFrameFormat(c.FrameFormat) {
		return fmt.Errorf("неизвестный формат кадров %q (ожидается .webp, .png, .jpg, .jpeg)", c.FrameFormat)
	}
	if c.SmoothingFactor <= 0 || c.SmoothingFactor > 1 {
		return fmt.Errorf("smoothingFactor должен быть в (0, 1], получено %f", c.SmoothingFactor)
	}
	if c.ScrollSensitivity < 0 || c.WheelSensitivity < 0 {
		return fmt.Errorf("чувствительность прокрутки не может быть отрицательной")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("некорректный размер кадра %dx%d", c.Width, c.Height)
	}
	if c.LoadTimeout < 0 || c.ThrottleInterval < 0 {
		return fmt.Errorf("интервалы не могут быть отрицательными")
	}
	return nil
}

// IsFrameFormat reports whether format is a supported frame extension (with leading dot).
func IsFrameFormat(format string) bool {
	for _, f := range frameFormats {
		if f == format {
			return true
		}
	}
	return false
}
